/**
 * @description
 * This file sets up the HTTP router for the finance API. It wires the
 * middleware chain (request logging, panic recovery, security headers, CORS,
 * session resolution, rate limiting), mounts the resource routes, and applies the
 * response cache to the read-heavy endpoints.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser frontend.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries everything the router needs beyond the handlers.
type RouterConfig struct {
	Handlers *Handlers
	Session  SessionConfig

	Limiter        *RateLimiter
	GeneralMax     int
	AuthMax        int
	WriteMax       int
	Cache          *ResponseCache
	FrontendOrigin string

	Version string
}

// NewRouter creates and returns the service router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	h := cfg.Handlers
	startedAt := time.Now()

	// Standard middleware for proxy-aware client IPs, logging, panic
	// recovery, compression, and request timeouts.
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", indexHandler(cfg.Version))
	r.Get("/health", healthHandler(startedAt))

	r.Route("/api", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Session))
		r.Use(cfg.Limiter.Middleware(RateLimitTier{Scope: "general", Limit: cfg.GeneralMax}))
		r.Use(cfg.Limiter.Middleware(RateLimitTier{
			Scope:   "write",
			Limit:   cfg.WriteMax,
			Methods: []string{http.MethodPost, http.MethodPut, http.MethodDelete},
		}))

		r.Route("/auth", func(r chi.Router) {
			r.Use(cfg.Limiter.Middleware(RateLimitTier{Scope: "auth", Limit: cfg.AuthMax}))
			r.Post("/google", h.GoogleLoginHandler)
			r.Post("/logout", h.LogoutHandler)
			r.Get("/me", h.AuthMeHandler)
		})

		// Everything below requires a resolved identity.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.GetMeHandler)
				r.Put("/me", h.UpdateMeHandler)
				r.Delete("/me", h.DeleteMeHandler)
				r.Put("/me/notifications", h.UpdateNotificationsHandler)
				r.Put("/me/security", h.UpdateSecurityHandler)
				r.Post("/sync", h.SyncHandler)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", h.CreateTransactionHandler)
				r.Get("/", h.ListTransactionsHandler)
				r.Get("/by-month", h.ListTransactionsByMonthHandler)
				r.Get("/by-category/{categoryID}", h.ListTransactionsByCategoryHandler)
				r.Get("/by-type/{type}", h.ListTransactionsByTypeHandler)
				r.Get("/recurring", h.ListRecurringTransactionsHandler)

				r.Group(func(r chi.Router) {
					r.Use(cfg.Cache.Middleware)
					r.Get("/summary/monthly", h.MonthlySummaryHandler)
					r.Get("/summary/yearly", h.YearlySummaryHandler)
					r.Get("/dashboard-stats", h.DashboardStatsHandler)
					r.Get("/analytics", h.TransactionAnalyticsHandler)
				})

				r.Get("/{id}", h.GetTransactionHandler)
				r.Put("/{id}", h.UpdateTransactionHandler)
				r.Delete("/{id}", h.DeleteTransactionHandler)
			})

			r.Route("/savings-goals", func(r chi.Router) {
				r.Post("/", h.CreateSavingsGoalHandler)
				r.Get("/", h.ListSavingsGoalsHandler)
				r.Get("/active", h.ListActiveSavingsGoalsHandler)
				r.Get("/completed", h.ListCompletedSavingsGoalsHandler)
				r.Get("/{id}", h.GetSavingsGoalHandler)
				r.Put("/{id}", h.UpdateSavingsGoalHandler)
				r.Delete("/{id}", h.DeleteSavingsGoalHandler)
				r.Patch("/{id}/progress", h.UpdateSavingsGoalProgressHandler)
			})

			r.Route("/debt-records", func(r chi.Router) {
				r.Post("/", h.CreateDebtRecordHandler)
				r.Get("/", h.ListDebtRecordsHandler)
				r.Get("/pending", h.ListPendingDebtRecordsHandler)
				r.Get("/paid", h.ListPaidDebtRecordsHandler)
				r.Get("/{id}", h.GetDebtRecordHandler)
				r.Put("/{id}", h.UpdateDebtRecordHandler)
				r.Delete("/{id}", h.DeleteDebtRecordHandler)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", h.CreateCategoryHandler)
				r.Get("/", h.ListCategoriesHandler)
				r.Get("/type/{type}", h.ListCategoriesByTypeHandler)
				r.Put("/{id}", h.UpdateCategoryHandler)
				r.Delete("/{id}", h.DeleteCategoryHandler)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Use(cfg.Cache.Middleware)
				r.Get("/balance-over-time", h.BalanceOverTimeHandler)
				r.Get("/expense-savings", h.ExpenseSavingsHandler)
				r.Get("/need-want", h.NeedWantHandler)
				r.Get("/stats", h.AnalyticsStatsHandler)
			})
		})
	})

	return r
}

func indexHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{
			"name":    "finance-api",
			"version": version,
			"status":  "ok",
			"endpoints": map[string]string{
				"auth":         "/api/auth",
				"users":        "/api/users",
				"transactions": "/api/transactions",
				"savingsGoals": "/api/savings-goals",
				"debtRecords":  "/api/debt-records",
				"categories":   "/api/categories",
				"analytics":    "/api/analytics",
			},
		})
	}
}

func healthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{
			"message":   "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startedAt).Round(time.Second).String(),
		})
	}
}
