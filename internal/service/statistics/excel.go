package statistics

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const statisticsSheet = "Статистика"

var statisticsHeaders = []string{
	"Сотрудник", "Telegram", "Дней", "Смен", "Заявок", "Bybit", "HTX", "Bliss",
	"Заявок в день", "Прибыль проекта", "Чистая прибыль", "Зарплата", "Скам", "Докидка",
	"Прибыль за смену",
}

// StatisticsExcel: статистика сотрудников за период в виде XLSX.
func (s *Service) StatisticsExcel(ctx context.Context, period Period) ([]byte, error) {
	const op = "service.statistics.StatisticsExcel"

	stats, err := s.EmployeeStatistics(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := statisticsWorkbook(stats, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func statisticsWorkbook(stats []EmployeeStats, period Period) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statisticsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, err
	}

	for i, name := range statisticsHeaders {
		f.SetCellValue(statisticsSheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(statisticsSheet, "A1", cellName(len(statisticsHeaders), 1), headerStyle)

	for i, st := range stats {
		row := []any{
			st.Name, st.Telegram, st.TotalDays, st.TotalShifts, st.TotalRequests,
			st.TotalBybit, st.TotalHTX, st.TotalBliss, st.AvgRequestsPerDay,
			st.TotalProfit, st.NetProfit, st.Salary, st.TotalScam, st.TotalTransfer,
			st.AvgProfitPerShift,
		}
		if err := f.SetSheetRow(statisticsSheet, cellName(1, i+2), &row); err != nil {
			return nil, err
		}
	}

	// строка периода под таблицей
	footer := len(stats) + 3
	f.SetCellValue(statisticsSheet, cellName(1, footer), "Период")
	f.SetCellValue(statisticsSheet, cellName(2, footer), dateKey(period.From)+" — "+dateKey(period.To))

	f.SetPanes(statisticsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(statisticsSheet, "A", "B", 22)
	f.SetColWidth(statisticsSheet, "C", "O", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
