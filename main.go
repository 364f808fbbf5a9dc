package main

//go:generate swag init

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kmjmahal/billing/counter"
	"github.com/kmjmahal/billing/db"
	_ "github.com/kmjmahal/billing/docs"
	"github.com/kmjmahal/billing/handlers"
)

//go:embed static/*
var staticFiles embed.FS

// @title           KMJ Billing API
// @version         1.0.0
// @description     API for household bills, receipts, member records, and collection statistics.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in              header
// @name            Authorization

func main() {
	// Configure structured logging
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Open database
	database, err := db.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Set shared DB for handlers
	handlers.DB = database

	// Apply any counter resets that fell due while the server was down,
	// then check again shortly after each midnight.
	if err := counter.CheckAndResetDue(database, time.Now()); err != nil {
		slog.Error("counter reset check failed", "error", err)
	}
	scheduler := cron.New()
	scheduler.AddFunc("5 0 * * *", func() {
		if err := counter.CheckAndResetDue(database, time.Now()); err != nil {
			slog.Error("counter reset check failed", "error", err)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.Auth)

		// Bills
		r.Get("/bills", handlers.ListBills)
		r.Post("/bills", handlers.CreateBill)
		r.Get("/bills/receipt/{no}", handlers.GetBillByReceipt)
		r.Get("/bills/{id}", handlers.GetBill)

		// Members (self or admin)
		r.Get("/members/{ward}/{house}", handlers.GetMember)
		r.Get("/members/{ward}/{house}/bills", handlers.MemberBills)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAdmin)

			r.Put("/bills/{id}", handlers.UpdateBill)
			r.Delete("/bills/{id}", handlers.VoidBill)

			r.Get("/members", handlers.ListMembers)
			r.Post("/members", handlers.CreateMember)
			r.Put("/members/{ward}/{house}", handlers.UpdateMember)
			r.Delete("/members/{ward}/{house}", handlers.DeleteMember)

			r.Get("/stats/summary", handlers.StatsSummary)
			r.Get("/stats/by-category", handlers.StatsByCategory)
			r.Get("/stats/monthly", handlers.StatsMonthly)
			r.Get("/stats/top-households", handlers.StatsTopHouseholds)
			r.Get("/stats/recent", handlers.StatsRecent)

			r.Get("/counters/{name}", handlers.GetCounter)
			r.Post("/counters/{name}/reset", handlers.ResetCounter)
		})
	})

	// Serve static files (UI)
	staticFS, _ := fs.Sub(staticFiles, "static")
	r.Handle("/*", http.FileServer(http.FS(staticFS)))

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
