// Package ledger is the core engine: ledger writes, loan lifecycle,
// replenishment and the eligibility projection. Every mutating operation runs
// inside one sqlite transaction; handlers and the daemon stay thin.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// Service orchestrates the mutuelle core over one database handle.
type Service struct {
	db     *sqlite.DB
	params domain.Params
	log    *logrus.Logger
	now    func() time.Time
}

// New builds a Service. Params are resolved once by the caller; the core
// never reads configuration files.
func New(db *sqlite.DB, params domain.Params, log *logrus.Logger) *Service {
	return &Service{db: db, params: params, log: log, now: time.Now}
}

// Params returns the association parameters in force.
func (s *Service) Params() domain.Params { return s.params }

// today truncates now to a date.
func (s *Service) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ─── Fund helpers (inside an open transaction) ──────────────────────────────

// creditFund appends a credit movement and refreshes the cached balance.
func (s *Service) creditFund(st *sqlite.Store, periodID string, amount decimal.Decimal, description string) error {
	return s.moveFund(st, periodID, domain.MovementCredit, amount, description)
}

// debitFund appends a debit movement, rejecting overdraft.
func (s *Service) debitFund(st *sqlite.Store, periodID string, amount decimal.Decimal, description string) error {
	return s.moveFund(st, periodID, domain.MovementDebit, amount, description)
}

func (s *Service) moveFund(st *sqlite.Store, periodID string, typ domain.MovementType, amount decimal.Decimal, description string) error {
	fund, err := st.EnsureFund(periodID, s.now().UTC())
	if err != nil {
		return err
	}
	if typ == domain.MovementDebit && fund.Balance.LessThan(amount) {
		return domain.AmountError(domain.ErrInsufficientFunds, amount, fund.Balance)
	}
	m := domain.FundMovement{
		ID:          newID(),
		FundID:      fund.ID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if err := st.InsertMovement(m); err != nil {
		return err
	}
	balance := fund.Balance.Add(m.Signed())
	if err := st.UpdateFundBalance(fund.ID, balance); err != nil {
		return err
	}
	fundBalanceGauge.Set(balanceFloat(balance))
	return nil
}

func balanceFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// ─── Eligibility projection ─────────────────────────────────────────────────

// memberFacts gathers the four eligibility inputs for one member.
func (s *Service) memberFacts(st *sqlite.Store, m *domain.Member) (domain.MemberFacts, error) {
	var f domain.MemberFacts
	var err error

	f.RegistrationDue = s.params.RegistrationAmount
	if f.RegistrationPaid, err = st.SumRegistrationPayments(m.ID); err != nil {
		return f, err
	}

	sessions, err := st.CountDuesSessions(m.RegistrationDate)
	if err != nil {
		return f, err
	}
	f.SolidarityDue = s.params.SolidarityAmount.Mul(decimal.NewFromInt(int64(sessions)))
	if f.SolidarityPaid, err = st.SumSolidarityPayments(m.ID); err != nil {
		return f, err
	}

	debts, err := st.ListDebtsForMember(m.ID)
	if err != nil {
		return f, err
	}
	for _, d := range debts {
		f.ReplenishmentDue = f.ReplenishmentDue.Add(d.AmountDue)
		f.ReplenishmentPaid = f.ReplenishmentPaid.Add(d.AmountPaid)
	}

	loan, err := st.OpenLoanForMember(m.ID)
	if err != nil {
		return f, err
	}
	if loan != nil {
		f.LoanRemaining = loan.Remaining()
	}
	return f, nil
}

// refreshStanding recomputes a member's standing and persists the projection.
func (s *Service) refreshStanding(st *sqlite.Store, memberID string) (domain.Standing, error) {
	m, err := st.GetMember(memberID)
	if err != nil {
		return domain.Standing{}, err
	}
	if m == nil {
		return domain.Standing{}, domain.ErrMemberNotFound
	}
	facts, err := s.memberFacts(st, m)
	if err != nil {
		return domain.Standing{}, err
	}
	standing := domain.Evaluate(facts)
	next := standing.Status(m.Status)
	if next != m.Status {
		if err := st.UpdateMemberStatus(m.ID, next); err != nil {
			return standing, err
		}
		s.log.WithFields(logrus.Fields{
			"member": m.MemberNo,
			"from":   m.Status,
			"to":     next,
		}).Info("member standing changed")
	}
	return standing, nil
}

func newID() string { return uuid.NewString() }
