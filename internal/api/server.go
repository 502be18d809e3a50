// Package api provides the HTTP server for the mutuelle engine.
// A thin adapter: it decodes one canonical request shape per operation,
// calls the ledger service and maps domain errors to statuses. Auth and
// aliased field names stay outside the core.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mutuelle-network/mutuelle/internal/app/ledger"
	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// Server is the mutuelle HTTP API server.
type Server struct {
	svc            *ledger.Service
	metricsEnabled bool
}

// NewServer creates a new API server over the ledger service.
func NewServer(svc *ledger.Service) *Server {
	return &Server{svc: svc}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/periods", s.handleOpenPeriod)
		r.Post("/sessions", s.handleActivateSession)

		r.Post("/members", s.handleCreateMember)
		r.Get("/members", s.handleListMembers)
		r.Get("/members/{id}/snapshot", s.handleMemberSnapshot)
		r.Post("/members/{id}/suspend", s.handleSuspendMember)

		r.Post("/payments/registration", s.handleRegistrationPayment)
		r.Post("/payments/solidarity", s.handleSolidarityPayment)
		r.Post("/savings/deposits", s.handleSavingsDeposit)

		r.Post("/loans", s.handleRequestLoan)
		r.Post("/loans/{id}/repayments", s.handleApplyRepayment)
		r.Get("/loans/statistics", s.handleLoanStats)

		r.Post("/assistance/types", s.handleCreateAssistanceType)
		r.Get("/assistance/types", s.handleListAssistanceTypes)
		r.Post("/assistance/grants", s.handleGrantAssistance)
		r.Post("/assistance/grants/{id}/approve", s.handleApproveGrant)
		r.Post("/assistance/grants/{id}/reject", s.handleRejectGrant)
		r.Post("/assistance/grants/{id}/pay", s.handleMarkAssistancePaid)

		r.Post("/replenishments/{id}/payments", s.handleReplenishmentPayment)
		r.Get("/replenishments/simulation", s.handleSimulateReplenishment)

		r.Get("/fund/{periodId}", s.handleFundSnapshot)
		r.Get("/system/snapshot", s.handleSystemSnapshot)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Response helpers ───────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error kind to an HTTP status and writes the JSON
// error body. The message carries the numeric context the core attached.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
			"type":    "error",
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrExceedsMax),
		errors.Is(err, domain.ErrExceedsOutstanding),
		errors.Is(err, domain.ErrNotRepayable),
		errors.Is(err, domain.ErrAlreadyBorrowing),
		errors.Is(err, domain.ErrGrantNotPayable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrDebtNotFound),
		errors.Is(err, domain.ErrGrantNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoActivePeriod),
		errors.Is(err, domain.ErrNoActiveSession),
		errors.Is(err, domain.ErrNoEligibleMembers):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConflictRetryable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{
				"message": "invalid request body",
				"type":    "error",
			},
		})
		return false
	}
	return true
}
