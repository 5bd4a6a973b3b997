package parser

import (
	"p2p-reports/internal/storage"
	"time"
)

// FilterWindow оставляет ордера с from <= executed_at <= to. Пустая граница не ограничивает.
func FilterWindow(orders []storage.Order, from, to *time.Time) (kept []storage.Order, outside int) {
	for _, o := range orders {
		if from != nil && o.ExecutedAt.Before(*from) {
			outside++
			continue
		}
		if to != nil && o.ExecutedAt.After(*to) {
			outside++
			continue
		}
		kept = append(kept, o)
	}
	return kept, outside
}
