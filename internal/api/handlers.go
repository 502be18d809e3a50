package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Periods & Sessions ─────────────────────────────────────────────────────

type openPeriodRequest struct {
	Start string `json:"start"` // 2006-01-02
	Name  string `json:"name"`
}

func (s *Server) handleOpenPeriod(w http.ResponseWriter, r *http.Request) {
	var req openPeriodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}
	p, err := s.svc.OpenPeriod(r.Context(), start, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type activateSessionRequest struct {
	Date            string          `json:"date"` // 2006-01-02
	Name            string          `json:"name"`
	CollationAmount decimal.Decimal `json:"collation_amount"`
}

func (s *Server) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	var req activateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}
	sess, err := s.svc.ActivateSession(r.Context(), date, req.Name, req.CollationAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// ─── Members ────────────────────────────────────────────────────────────────

type createMemberRequest struct {
	FullName string `json:"full_name"`
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := s.svc.CreateMember(r.Context(), req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.ListMembers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (s *Server) handleMemberSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.GetMemberSnapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSuspendMember(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SuspendMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "suspended"})
}

// ─── Payments & Savings ─────────────────────────────────────────────────────

type paymentRequest struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

func (s *Server) handleRegistrationPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	standing, err := s.svc.PostRegistrationPayment(r.Context(), req.MemberID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, standing)
}

func (s *Server) handleSolidarityPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	standing, err := s.svc.PostSolidarityPayment(r.Context(), req.MemberID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, standing)
}

func (s *Server) handleSavingsDeposit(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	balance, err := s.svc.PostSavingsDeposit(r.Context(), req.MemberID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"balance": balance})
}

// ─── Loans ──────────────────────────────────────────────────────────────────

type loanRequest struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

func (s *Server) handleRequestLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	loan, err := s.svc.RequestLoan(r.Context(), req.MemberID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleApplyRepayment(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rep, err := s.svc.ApplyRepayment(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleLoanStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.LoanStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ─── Assistance ─────────────────────────────────────────────────────────────

type assistanceTypeRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleCreateAssistanceType(w http.ResponseWriter, r *http.Request) {
	var req assistanceTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	typ, err := s.svc.CreateAssistanceType(r.Context(), req.Name, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, typ)
}

func (s *Server) handleListAssistanceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.svc.ListAssistanceTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"types": types})
}

type grantRequest struct {
	MemberID      string          `json:"member_id"`
	TypeID        string          `json:"type_id"`
	Amount        decimal.Decimal `json:"amount"`
	Justification string          `json:"justification"`
}

func (s *Server) handleGrantAssistance(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := s.svc.GrantAssistance(r.Context(), req.MemberID, req.TypeID, req.Amount, req.Justification)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleApproveGrant(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ApproveGrant(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (s *Server) handleRejectGrant(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RejectGrant(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (s *Server) handleMarkAssistancePaid(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.MarkAssistancePaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ─── Replenishment ──────────────────────────────────────────────────────────

func (s *Server) handleReplenishmentPayment(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	standing, err := s.svc.ApplyReplenishmentPayment(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, standing)
}

func (s *Server) handleSimulateReplenishment(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}
	sim, err := s.svc.SimulateReplenishment(r.Context(), amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

func (s *Server) handleFundSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.GetFundSnapshot(r.Context(), chi.URLParam(r, "periodId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSystemSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.GetSystemSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
