package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"p2p-reports/internal/lib/params"
	"p2p-reports/internal/storage"
	"strings"
	"time"

	"github.com/go-chi/render"
)

type OrderCreator interface {
	GetEmployee(ctx context.Context, id int64) (*storage.Employee, error)
	OrderExists(ctx context.Context, orderID, platform string) (bool, error)
	InsertOrder(ctx context.Context, o storage.Order) (int64, error)
}

type request struct {
	OrderID          string  `json:"order_id"`
	EmployeeID       int64   `json:"employee_id"`
	Platform         string  `json:"platform"`
	AccountName      string  `json:"account_name"`
	Symbol           string  `json:"symbol"`
	Side             string  `json:"side"`
	Quantity         float64 `json:"quantity"`
	Price            float64 `json:"price"`
	TotalUSDT        float64 `json:"total_usdt"`
	FeesUSDT         float64 `json:"fees_usdt"`
	Status           string  `json:"status"`
	CountInSales     bool    `json:"count_in_sales"`
	CountInPurchases bool    `json:"count_in_purchases"`
	ExecutedAt       string  `json:"executed_at"`
}

func (req request) validate() string {
	switch {
	case strings.TrimSpace(req.OrderID) == "":
		return "Отсутствует обязательное поле: order_id"
	case req.EmployeeID <= 0:
		return "Отсутствует обязательное поле: employee_id"
	case strings.TrimSpace(req.Symbol) == "":
		return "Отсутствует обязательное поле: symbol"
	case req.Side != storage.SideBuy && req.Side != storage.SideSell:
		return "Поле side должно быть buy или sell"
	case req.Quantity <= 0:
		return "Отсутствует обязательное поле: quantity"
	case req.Price <= 0:
		return "Отсутствует обязательное поле: price"
	}
	return ""
}

// SaveOrder создаёт ордер, введённый вручную. Значения сохраняются как есть,
// total_usdt считается только если не передан.
func SaveOrder(log *slog.Logger, creator OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.save.SaveOrder"

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Нет данных", http.StatusBadRequest)
			return
		}
		req.Side = strings.ToLower(strings.TrimSpace(req.Side))
		if msg := req.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		executedAt := time.Now().UTC()
		if t, err := params.ParseTimestamp(req.ExecutedAt); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		} else if t != nil {
			executedAt = *t
		}

		o := storage.Order{
			OrderID:          strings.TrimSpace(req.OrderID),
			EmployeeID:       req.EmployeeID,
			Platform:         strings.ToLower(req.Platform),
			AccountName:      req.AccountName,
			Symbol:           req.Symbol,
			Side:             req.Side,
			Quantity:         req.Quantity,
			Price:            req.Price,
			TotalUSDT:        req.TotalUSDT,
			FeesUSDT:         req.FeesUSDT,
			Status:           req.Status,
			CountInSales:     req.CountInSales,
			CountInPurchases: req.CountInPurchases,
			ExecutedAt:       executedAt,
		}
		if o.Platform == "" {
			o.Platform = storage.PlatformBybit
		}
		if o.Status == "" {
			o.Status = storage.StatusFilled
		}
		if o.TotalUSDT == 0 {
			o.TotalUSDT = o.Quantity * o.Price
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if _, err := creator.GetEmployee(ctx, o.EmployeeID); err != nil {
			if errors.Is(err, storage.ErrEmployeeNotFound) {
				http.Error(w, "Сотрудник не найден", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при получении сотрудника")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		exists, err := creator.OrderExists(ctx, o.OrderID, o.Platform)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при проверке ордера")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}
		if exists {
			http.Error(w, "Ордер уже существует", http.StatusConflict)
			return
		}

		id, err := creator.InsertOrder(ctx, o)
		if err != nil {
			if errors.Is(err, storage.ErrOrderExists) {
				http.Error(w, "Ордер уже существует", http.StatusConflict)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Ошибка при создании ордера")
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"id": id, "message": "Ордер успешно создан"})
	}
}
