package httpserver

import (
	"net/http"

	"vtrader/internal/admin"
	"vtrader/internal/auth"
	"vtrader/internal/health"
	"vtrader/internal/httputil"
	"vtrader/internal/ledger"
	"vtrader/internal/market"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler   *auth.Handler
	LedgerHandler *ledger.Handler
	MarketHandler *market.Handler
	AdminHandler  *admin.Handler
	HealthHandler *health.Handler
	AuthService   *auth.Service
	LedgerService *ledger.Service
	Simulator     *market.Simulator
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", d.HealthHandler.Ready)
	r.Get("/health/live", d.HealthHandler.Live)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
			r.Post("/login/admin", d.AuthHandler.LoginAdmin)
		})
		r.Get("/market/instruments", d.MarketHandler.Instruments)
		r.Get("/market/ws", d.MarketHandler.WS.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r)
				if !ok {
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
					return
				}
				acc, err := d.LedgerService.GetAccount(r.Context(), userID)
				if err != nil {
					httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
					return
				}
				httputil.WriteJSON(w, http.StatusOK, acc)
			})
			r.Post("/trade", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r)
				if !ok {
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
					return
				}
				d.LedgerHandler.Trade(w, r, userID)
			})
			r.Post("/funds", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r)
				if !ok {
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
					return
				}
				d.LedgerHandler.AddFunds(w, r, userID)
			})
			r.Get("/portfolio", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r)
				if !ok {
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
					return
				}
				d.LedgerHandler.Portfolio(w, r, userID)
			})
			r.Get("/transactions", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r)
				if !ok {
					httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
					return
				}
				d.LedgerHandler.Transactions(w, r, userID)
			})
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/stats", d.AdminHandler.Stats)
				r.Get("/users", d.AdminHandler.Users)
				// Manual tick, mainly for demos with a long TICK_INTERVAL.
				r.Post("/tick", func(w http.ResponseWriter, r *http.Request) {
					d.Simulator.Tick(r.Context())
					w.WriteHeader(http.StatusNoContent)
				})
			})
		})
	})
	return r
}
