package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"p2p-reports/internal/config"
	"p2p-reports/internal/metrics"
	"p2p-reports/internal/service/ingest"
	"p2p-reports/internal/service/linking"
	"p2p-reports/internal/service/profit"
	"p2p-reports/internal/service/report"
	"p2p-reports/internal/service/salary"
	"p2p-reports/internal/service/statistics"
	"p2p-reports/internal/storage/mysql"
	"p2p-reports/internal/uploads"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type methods struct {
	reports statistics.Methods
	list    profit.Method
	salary  profit.Method
}

type services struct {
	calc       *profit.Calculator
	ingest     *ingest.Service
	reports    *report.Service
	salary     *salary.Service
	statistics *statistics.Service
	uploads    *uploads.Store
	registry   *prometheus.Registry
	methods    methods
}

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env)

	storage, err := mysql.New(cfg.DB)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	if cfg.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := storage.Migrate(ctx)
		cancel()
		if err != nil {
			log.Error("failed to migrate db", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("db schema is up to date")
	}

	m, err := parseMethods(cfg.Profit)
	if err != nil {
		log.Error("invalid profit config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := uploads.New(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
	if err != nil {
		log.Error("failed to prepare upload dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	calc := profit.NewCalculator(storage)
	importer := ingest.New(log, storage)
	svc := services{
		calc:       calc,
		ingest:     importer,
		reports:    report.New(log, storage, importer, linking.New(storage), calc, cfg.Profit.DivergenceTolerance),
		salary:     salary.New(storage, calc, m.salary),
		statistics: statistics.New(storage, calc, m.reports),
		uploads:    store,
		registry:   registry,
		methods:    m,
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

func parseMethods(cfg config.Profit) (methods, error) {
	var m methods
	var err error
	for _, p := range []struct {
		dst *profit.Method
		raw string
	}{
		{&m.list, cfg.Reports},
		{&m.salary, cfg.Salary},
		{&m.reports.Dashboard, cfg.Dashboard},
		{&m.reports.Statistics, cfg.Statistics},
		{&m.reports.Profile, cfg.Profile},
	} {
		if *p.dst, err = profit.ParseMethod(p.raw); err != nil {
			return methods{}, err
		}
	}
	return m, nil
}
