package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/auth"
	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/handlers"
	"github.com/kdiawara/sika/internal/models"
	"github.com/kdiawara/sika/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Perform a lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", "db_unreachable")
			return
		}
		httpx.JSON(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	// Auth endpoints (the only unprotected surface besides health)
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /auth/register", ah.Register)
	mux.HandleFunc("POST /auth/login", ah.Login)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	// Lifecycle + client CRUD
	lifecycle := services.NewLifecycleService(db)
	ch := handlers.NewClientHandler(lifecycle)
	mux.Handle("POST /clients", protected(ch.Create))
	mux.Handle("GET /clients", protected(ch.List))
	mux.Handle("GET /clients/{id}", protected(ch.Get))
	mux.Handle("PUT /clients/{id}", protected(ch.Update))
	mux.Handle("DELETE /clients/{id}", protected(ch.Delete))
	mux.Handle("GET /clients/{id}/transactions", protected(ch.Transactions))
	mux.Handle("POST /clients/{id}/deposit", protected(ch.Deposit))
	mux.Handle("POST /clients/{id}/renew", protected(ch.Renew))
	mux.Handle("POST /clients/{id}/payout", protected(ch.Payout))

	// Agent administration
	agh := handlers.NewAgentHandler(db)
	mux.Handle("POST /agents", protected(agh.Create))
	mux.Handle("GET /agents", protected(agh.List))
	mux.Handle("GET /agents/{id}", protected(agh.Get))
	mux.Handle("PUT /agents/{id}", protected(agh.Update))
	mux.Handle("DELETE /agents/{id}", protected(agh.Delete))

	// Companion tickets
	th := handlers.NewTicketHandler(db)
	mux.Handle("GET /tickets", protected(th.List))
	mux.Handle("GET /tickets/{id}", protected(th.Get))
	mux.Handle("PUT /tickets/{id}", protected(th.Update))

	// Reporting
	stats := services.NewStatsService(db)
	sh := handlers.NewStatsHandler(stats)
	mux.Handle("GET /stats/dashboard", protected(sh.Dashboard))
	mux.Handle("GET /stats/timeseries", protected(sh.TimeSeries))

	return auth.Middleware(withRecover(withLogging(mux)))
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal error", "internal_error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
