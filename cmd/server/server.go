// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/pickleclub/internal/api"
	"github.com/codr1/pickleclub/internal/api/authz"
	"github.com/codr1/pickleclub/internal/api/bookings"
	"github.com/codr1/pickleclub/internal/api/courts"
	"github.com/codr1/pickleclub/internal/api/members"
	"github.com/codr1/pickleclub/internal/api/tournaments"
	"github.com/codr1/pickleclub/internal/api/wallet"
	"github.com/codr1/pickleclub/internal/ratelimit"
)

func newServer(a *app) *http.Server {
	router := http.NewServeMux()

	bookings.InitHandlers(a.bookings, a.planner)
	courts.InitHandlers(a.db.Queries, a.hours)
	wallet.InitHandlers(a.ledger)
	tournaments.InitHandlers(a.registry, a.bracket)
	members.InitHandlers(a.members)

	// Register routes
	registerRoutes(router, a)

	// Setup middleware chain; the last entry runs first.
	middleware := []api.Middleware{
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
	}
	if a.metrics != nil {
		middleware = append(middleware, api.WithMetrics(a.metrics))
	}
	middleware = append(middleware, api.WithRequestID)
	handler := api.ChainMiddleware(router, middleware...)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(a.cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// memberRateKey buckets wallet requests by the calling member. Anonymous
// requests are left to the handler, which rejects them.
func memberRateKey(r *http.Request) (string, bool) {
	user := authz.UserFromContext(r.Context())
	if user == nil {
		return "", false
	}
	return ratelimit.MemberKey(user.ID), true
}

func registerRoutes(mux *http.ServeMux, a *app) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}

	// Court routes
	mux.HandleFunc("GET /api/v1/courts", courts.HandleList)
	mux.HandleFunc("POST /api/v1/courts", courts.HandleCreate)
	mux.HandleFunc("GET /api/v1/courts/{id}/slots", courts.HandleSlots)
	mux.HandleFunc("PATCH /api/v1/courts/{id}/active", courts.HandleSetActive)

	// Booking routes
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleCreate)
	mux.HandleFunc("POST /api/v1/bookings/hold", bookings.HandleHold)
	mux.HandleFunc("POST /api/v1/bookings/recurring", bookings.HandleRecurring)
	mux.HandleFunc("GET /api/v1/bookings/mine", bookings.HandleMine)
	mux.HandleFunc("GET /api/v1/bookings/calendar", bookings.HandleCalendar)
	mux.HandleFunc("GET /api/v1/bookings/{id}", bookings.HandleGet)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", bookings.HandleCancel)
	mux.HandleFunc("POST /api/v1/bookings/{id}/confirm", bookings.HandleConfirm)
	mux.HandleFunc("PATCH /api/v1/bookings/{id}/status", bookings.HandleUpdateStatus)

	// Wallet routes; money movement is throttled per member.
	limited := a.limiter.Middleware(memberRateKey)
	mux.HandleFunc("GET /api/v1/wallet/balance", wallet.HandleBalance)
	mux.HandleFunc("GET /api/v1/wallet/transactions", wallet.HandleTransactions)
	mux.Handle("POST /api/v1/wallet/deposit", limited(http.HandlerFunc(wallet.HandleDeposit)))
	mux.Handle("POST /api/v1/wallet/withdraw", limited(http.HandlerFunc(wallet.HandleWithdraw)))
	mux.HandleFunc("GET /api/v1/wallet/admin/pending", wallet.HandlePending)
	mux.HandleFunc("PUT /api/v1/wallet/admin/approve/{id}", wallet.HandleApprove)
	mux.HandleFunc("PUT /api/v1/wallet/admin/reject/{id}", wallet.HandleReject)

	// Tournament routes
	mux.HandleFunc("GET /api/v1/tournaments", tournaments.HandleList)
	mux.HandleFunc("POST /api/v1/tournaments", tournaments.HandleCreate)
	mux.HandleFunc("GET /api/v1/tournaments/{id}", tournaments.HandleGet)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/join", tournaments.HandleJoin)
	mux.HandleFunc("DELETE /api/v1/tournaments/{id}/join", tournaments.HandleLeave)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/registrations", tournaments.HandleRegistrations)
	mux.HandleFunc("POST /api/v1/tournaments/{id}/generate-schedule", tournaments.HandleGenerateSchedule)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/matches", tournaments.HandleMatches)
	mux.HandleFunc("GET /api/v1/tournaments/{id}/standings", tournaments.HandleStandings)
	mux.HandleFunc("POST /api/v1/matches/{id}/result", tournaments.HandleRecordResult)

	// Member routes
	mux.HandleFunc("GET /api/v1/members", members.HandleList)
	mux.HandleFunc("POST /api/v1/members", members.HandleCreate)
	mux.HandleFunc("GET /api/v1/members/me", members.HandleMe)
	mux.HandleFunc("GET /api/v1/members/{id}", members.HandleGet)
	mux.HandleFunc("PATCH /api/v1/members/{id}/tier", members.HandleSetTier)
	mux.HandleFunc("PATCH /api/v1/members/{id}/active", members.HandleSetActive)
}
