package main

import (
	"log/slog"
	"net/http"
	getaccounts "p2p-reports/http-server/accounts/get"
	removeaccount "p2p-reports/http-server/accounts/remove"
	saveaccount "p2p-reports/http-server/accounts/save"
	"p2p-reports/http-server/auth/login"
	getbalances "p2p-reports/http-server/balances/get"
	savebalances "p2p-reports/http-server/balances/save"
	getemployees "p2p-reports/http-server/employees/get"
	removeemployee "p2p-reports/http-server/employees/remove"
	saveemployee "p2p-reports/http-server/employees/save"
	updateemployee "p2p-reports/http-server/employees/update"
	"p2p-reports/http-server/health"
	getorders "p2p-reports/http-server/orders/get"
	removeorders "p2p-reports/http-server/orders/remove"
	saveorder "p2p-reports/http-server/orders/save"
	updateorder "p2p-reports/http-server/orders/update"
	uploadorders "p2p-reports/http-server/orders/upload"
	getreports "p2p-reports/http-server/reports/get"
	removereport "p2p-reports/http-server/reports/remove"
	savereport "p2p-reports/http-server/reports/save"
	getsalary "p2p-reports/http-server/salary/get"
	getsettings "p2p-reports/http-server/settings/get"
	savesettings "p2p-reports/http-server/settings/save"
	getstatistics "p2p-reports/http-server/statistics/get"
	"p2p-reports/internal/config"
	"p2p-reports/internal/metrics"
	"p2p-reports/internal/middleware/auth"
	"p2p-reports/internal/middleware/limit"
	"p2p-reports/internal/storage/mysql"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(metrics.Middleware)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	adminPassword := auth.NewPassword(cfg.AdminPassword, cfg.AdminPasswordHash)
	admin := router.With(auth.AdminPassword(log, adminPassword))
	upload := router.With(limit.MaxBody(cfg.Uploads.MaxRequest))

	// сотрудники и аккаунты
	router.Get("/api/employees", getemployees.GetEmployees(log, storage))
	router.Post("/api/employees", saveemployee.SaveEmployee(log, storage))
	router.Put("/api/employees/{id}", updateemployee.UpdateEmployee(log, storage))
	admin.Delete("/api/employees/{id}", removeemployee.DeleteEmployee(log, storage))
	router.Get("/api/employee-accounts/{id}", getemployees.GetEmployeeAccounts(log, storage))
	router.Get("/api/employee-scams/{id}", getemployees.GetEmployeeScams(log, storage))

	router.Get("/api/accounts", getaccounts.GetAccounts(log, storage))
	router.Post("/api/accounts", saveaccount.SaveAccount(log, storage))
	admin.Delete("/api/accounts/{id}", removeaccount.DeleteAccount(log, storage))

	// отчёты смен
	router.Get("/api/reports", getreports.GetReports(log, storage, svc.calc, svc.methods.list))
	upload.Post("/api/reports", savereport.SaveReport(log, svc.reports, svc.uploads))
	upload.Post("/api/reports/create-shift", savereport.CreateShift(log, svc.reports, svc.uploads))
	router.Get("/api/reports/{id}/profit", getreports.GetReportProfit(log, svc.reports))
	admin.Delete("/api/reports/{id}", removereport.DeleteReport(log, svc.reports))
	upload.Post("/api/validate-shift", savereport.ValidateShift(log, svc.reports))

	// ордера
	router.Get("/api/orders", getorders.GetOrders(log, storage))
	router.Get("/api/orders/btc", getorders.GetBTCOrders(log, storage))
	router.Get("/api/orders/statistics", getorders.GetOrderStatistics(log, svc.statistics))
	router.Post("/api/orders", saveorder.SaveOrder(log, storage))
	upload.Post("/api/orders/upload", uploadorders.UploadOrders(log, storage, svc.ingest, svc.uploads))
	admin.Post("/api/orders/bulk-delete", removeorders.BulkDelete(log, storage))
	router.Put("/api/orders/{id}", updateorder.UpdateOrder(log, storage))
	admin.Delete("/api/orders/{id}", removeorders.DeleteOrder(log, storage))

	// балансы
	router.Get("/api/platform-balances", getbalances.GetPlatformBalances(log, svc.statistics))
	router.Get("/api/settings/balances", getbalances.GetInitialBalances(log, storage))
	admin.Post("/api/settings/balances", savebalances.ReplaceInitialBalances(log, storage))
	router.Get("/api/account-balance-history", getbalances.GetBalanceHistory(log, storage))
	router.Post("/api/account-balance-history", savebalances.AddBalanceHistory(log, storage))

	// статистика и зарплата
	router.Get("/api/dashboard", getstatistics.GetDashboard(log, svc.statistics))
	router.Get("/api/statistics", getstatistics.GetStatistics(log, svc.statistics))
	router.Get("/api/statistics/excel", getstatistics.GetStatisticsExcel(log, svc.statistics))
	router.Get("/api/employee-profile/{id}", getstatistics.GetEmployeeProfile(log, svc.statistics))
	router.Get("/api/employee-salary/{id}", getsalary.GetEmployeeSalary(log, svc.salary))
	router.Get("/api/settings/salary", getsettings.GetSalarySettings(log, storage))
	admin.Post("/api/settings/salary", savesettings.UpdateSalarySettings(log, storage))

	router.Post("/api/auth/login", login.Login(log, "app", auth.NewPassword(cfg.AppPassword, "")))
	router.Post("/api/auth/admin", login.Login(log, "admin", adminPassword))

	router.Handle("/api/uploads/*", http.StripPrefix("/api/uploads/", noListing(http.FileServer(http.Dir(svc.uploads.Dir())))))

	router.Get("/health", health.Health(log, storage))
	router.With(auth.BasicAuth("Metrics", cfg.MetricsUser, cfg.MetricsPassword)).
		Handle("/metrics", metrics.Handler(svc.registry))

	return router
}

// noListing не отдаёт содержимое каталога загрузок.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
