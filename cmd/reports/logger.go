package main

import (
	"context"
	"log/slog"
	"os"
)

const errorLogFile = "errors.log"

// fanoutHandler пишет всё в основной вывод, а ошибки дублирует в файл.
type fanoutHandler struct {
	main   slog.Handler
	errors slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.main.Enabled(ctx, lvl) || h.errors.Enabled(ctx, lvl)
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.main.Enabled(ctx, r.Level) {
		if err := h.main.Handle(ctx, r); err != nil {
			return err
		}
	}

	// ошибка записи в файл не должна ронять запрос
	if h.errors.Enabled(ctx, r.Level) {
		_ = h.errors.Handle(ctx, r.Clone())
	}

	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fanoutHandler{main: h.main.WithAttrs(attrs), errors: h.errors.WithAttrs(attrs)}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	return &fanoutHandler{main: h.main.WithGroup(name), errors: h.errors.WithGroup(name)}
}

func setupLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if env == envProd {
		opts.Level = slog.LevelInfo
	}

	var base slog.Handler
	switch env {
	case envDev, envProd:
		base = slog.NewJSONHandler(os.Stdout, opts)
	default:
		base = slog.NewTextHandler(os.Stdout, opts)
	}

	f, err := os.OpenFile(errorLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log := slog.New(base)
		log.Warn("cannot open error log file", slog.String("error", err.Error()))
		return log
	}

	return slog.New(&fanoutHandler{
		main:   base,
		errors: slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelError}),
	})
}
