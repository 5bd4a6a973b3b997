package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/service/report"
	"p2p-reports/internal/storage"
	"strings"
	"time"

	"github.com/go-chi/render"
)

type ShiftCreator interface {
	CreateShift(ctx context.Context, req report.ShiftRequest) (report.ShiftResult, error)
}

// CreateShift создаёт смену из формы: выбранные аккаунты, ручные суммы Gate
// (gate_amount_{id}, gate_amount_rub_{id}) и выгрузки по аккаунтам
// (file_{platform}_{id}, file_bybit_btc_{id}).
func CreateShift(log *slog.Logger, creator ShiftCreator, store FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.save.CreateShift"

		if !parseForm(w, r) {
			return
		}
		f := fields(r.FormValue)

		if err := required(f, "employee_id", "shift_date", "shift_start_time", "shift_end_time"); err != nil {
			http.Error(w, "Заполните все обязательные поля", http.StatusBadRequest)
			return
		}

		rep, err := reportFromFields(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		selected, err := selectedAccounts(f("selected_accounts"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req := report.ShiftRequest{
			Report:           rep,
			SelectedAccounts: selected,
			GateAmounts:      make(map[int64]report.GateAmount),
		}

		for _, id := range selected[storage.PlatformGate] {
			usdt, err := params.Float("gate_amount", f(fmt.Sprintf("gate_amount_%d", id)))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rub, err := params.Float("gate_amount_rub", f(fmt.Sprintf("gate_amount_rub_%d", id)))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if usdt > 0 {
				req.GateAmounts[id] = report.GateAmount{USDT: usdt, Rub: rub}
			}
		}

		saved := &savedFiles{store: store}
		names := map[string]*string{
			storage.PlatformBybit:    &req.Report.BybitFile,
			storage.PlatformBybitBTC: &req.Report.BybitBTCFile,
			storage.PlatformHTX:      &req.Report.HTXFile,
			storage.PlatformBliss:    &req.Report.BlissFile,
		}
		for _, platform := range []string{storage.PlatformBybit, storage.PlatformHTX, storage.PlatformBliss} {
			for _, id := range selected[platform] {
				filePlatforms := []string{platform}
				if platform == storage.PlatformBybit {
					filePlatforms = append(filePlatforms, storage.PlatformBybitBTC)
				}
				for _, fp := range filePlatforms {
					file, ok, err := saved.save(r, fmt.Sprintf("file_%s_%d", fp, id), false)
					if err != nil {
						saved.discard(log, op)
						uploadError(w, log, op, err)
						return
					}
					if !ok {
						continue
					}
					if *names[fp] == "" {
						*names[fp] = file.Name
					}
					req.Files = append(req.Files, upload(fp, id, file))
				}
			}
		}

		for field, dst := range map[string]*string{"start_photo": &req.Report.StartPhoto, "end_photo": &req.Report.EndPhoto} {
			file, ok, err := saved.save(r, field, true)
			if err != nil {
				saved.discard(log, op)
				uploadError(w, log, op, err)
				return
			}
			if ok {
				*dst = file.Name
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		res, err := creator.CreateShift(ctx, req)
		if err != nil {
			saved.discard(log, op)
			createError(w, log, op, err)
			return
		}

		log.Info("смена создана",
			slog.Int64("id", res.ID),
			slog.Int("total_orders", res.Stats.TotalOrders),
			slog.Int("linked_orders", res.Stats.LinkedOrders),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, res)
	}
}

// selectedAccounts разбирает {"bybit": [1, 2], "gate": ["3"]}.
func selectedAccounts(raw string) (map[string][]int64, error) {
	res := make(map[string][]int64)
	if strings.TrimSpace(raw) == "" {
		return res, nil
	}

	var parsed map[string][]json.Number
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("Неверный формат выбранных аккаунтов")
	}

	for platform, ids := range parsed {
		platform = strings.ToLower(platform)
		for _, n := range ids {
			id, err := n.Int64()
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("Некорректный id аккаунта %q", n)
			}
			res[platform] = append(res[platform], id)
		}
	}
	return res, nil
}
