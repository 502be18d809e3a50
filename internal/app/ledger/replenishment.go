package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// ─── Replenishment ──────────────────────────────────────────────────────────

// distributeDebts splits an outflow equally among the members in good
// standing at distribution time whose registration date is on or before the
// session date, creating one debt per member. Re-running with the same cause
// and detail is a no-op per member. Debtors' standings are recomputed
// afterwards (a fresh debt disqualifies under zero tolerance).
func (s *Service) distributeDebts(st *sqlite.Store, session *domain.Session, amount decimal.Decimal, cause domain.ReplenishmentCause, causeDetail string) (count int, per decimal.Decimal, err error) {
	candidates, err := st.ListMembersInGoodStanding()
	if err != nil {
		return 0, decimal.Zero, err
	}
	var members []domain.Member
	for _, m := range candidates {
		if !m.RegistrationDate.After(session.Date) {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return 0, decimal.Zero, domain.ErrNoEligibleMembers
	}

	per = domain.EqualShare(amount, len(members))
	now := s.now().UTC()
	for _, m := range members {
		debt := domain.ReplenishmentDebt{
			ID:          newID(),
			MemberID:    m.ID,
			SessionID:   session.ID,
			AmountDue:   per,
			AmountPaid:  decimal.Zero,
			Cause:       cause,
			CauseDetail: causeDetail,
			CreatedAt:   now,
		}
		if _, err := st.InsertDebt(debt); err != nil {
			return 0, decimal.Zero, err
		}
		if _, err := s.refreshStanding(st, m.ID); err != nil {
			return 0, decimal.Zero, err
		}
	}
	s.log.WithFields(logrus.Fields{
		"cause":   cause,
		"amount":  amount.StringFixed(2),
		"members": len(members),
		"share":   per.StringFixed(2),
	}).Info("replenishment distributed")
	return len(members), per, nil
}

// ApplyReplenishmentPayment records an installment on a replenishment debt,
// credits the fund and recomputes the member's standing. Paying past the
// amount due is accepted; the surplus stays in the fund.
func (s *Service) ApplyReplenishmentPayment(ctx context.Context, debtID string, amount decimal.Decimal) (standing domain.Standing, err error) {
	defer func() { observe("replenishment_payment", err) }()

	if !amount.IsPositive() {
		return standing, domain.ErrInvalidAmount
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		debt, err := st.GetDebt(debtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return domain.ErrDebtNotFound
		}
		payment := domain.ReplenishmentPayment{
			ID:        newID(),
			DebtID:    debtID,
			SessionID: session.ID,
			Amount:    amount,
			CreatedAt: s.now().UTC(),
		}
		if err := st.InsertReplenishmentPayment(payment); err != nil {
			return err
		}
		if err := st.UpdateDebtPaid(debtID, debt.AmountPaid.Add(amount)); err != nil {
			return err
		}
		if err := s.creditFund(st, period.ID, amount, "renflouement "+string(debt.Cause)); err != nil {
			return err
		}
		standing, err = s.refreshStanding(st, debt.MemberID)
		return err
	})
	if err != nil {
		return domain.Standing{}, err
	}
	return standing, nil
}

// ReplenishmentSimulation is the dry-run projection of an outflow split.
type ReplenishmentSimulation struct {
	MemberCount int             `json:"member_count"`
	Share       decimal.Decimal `json:"share"`
	Collected   decimal.Decimal `json:"collected"`
}

// SimulateReplenishment computes the per-member share an outflow would
// produce without writing anything.
func (s *Service) SimulateReplenishment(ctx context.Context, amount decimal.Decimal) (ReplenishmentSimulation, error) {
	if !amount.IsPositive() {
		return ReplenishmentSimulation{}, domain.ErrInvalidAmount
	}
	members, err := s.db.Read().ListMembersInGoodStanding()
	if err != nil {
		return ReplenishmentSimulation{}, err
	}
	share := domain.EqualShare(amount, len(members))
	return ReplenishmentSimulation{
		MemberCount: len(members),
		Share:       share,
		Collected:   share.Mul(decimal.NewFromInt(int64(len(members)))),
	}, nil
}
