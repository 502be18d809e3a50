package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// ─── Contribution Payments ──────────────────────────────────────────────────
// Registration and solidarity payments feed the fund account and the
// eligibility facts. Both may be paid in installments.

// PostRegistrationPayment records an installment of the registration fee,
// credits the fund and recomputes the member's standing. An installment may
// not exceed the remaining fee.
func (s *Service) PostRegistrationPayment(ctx context.Context, memberID string, amount decimal.Decimal) (standing domain.Standing, err error) {
	defer func() { observe("registration_payment", err) }()

	if !amount.IsPositive() {
		return standing, domain.ErrInvalidAmount
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		m, err := st.GetMember(memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMemberNotFound
		}

		paid, err := st.SumRegistrationPayments(memberID)
		if err != nil {
			return err
		}
		remaining := s.params.RegistrationAmount.Sub(paid)
		if amount.GreaterThan(remaining) {
			return domain.AmountError(domain.ErrExceedsOutstanding, amount, remaining)
		}

		if err := st.InsertRegistrationPayment(newID(), memberID, session.ID, amount, s.now().UTC()); err != nil {
			return err
		}
		if err := s.creditFund(st, period.ID, amount, "frais d'adhésion "+m.MemberNo); err != nil {
			return err
		}
		standing, err = s.refreshStanding(st, memberID)
		return err
	})
	if err != nil {
		return domain.Standing{}, err
	}
	s.log.WithFields(logrus.Fields{"member": memberID, "amount": amount.StringFixed(2)}).
		Info("registration payment posted")
	return standing, nil
}

// PostSolidarityPayment records a solidarity due payment, credits the fund
// and recomputes standing. Paying ahead of the accrued dues is allowed.
func (s *Service) PostSolidarityPayment(ctx context.Context, memberID string, amount decimal.Decimal) (standing domain.Standing, err error) {
	defer func() { observe("solidarity_payment", err) }()

	if !amount.IsPositive() {
		return standing, domain.ErrInvalidAmount
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		m, err := st.GetMember(memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMemberNotFound
		}

		if err := st.InsertSolidarityPayment(newID(), memberID, session.ID, amount, s.now().UTC()); err != nil {
			return err
		}
		if err := s.creditFund(st, period.ID, amount, "solidarité "+m.MemberNo); err != nil {
			return err
		}
		standing, err = s.refreshStanding(st, memberID)
		return err
	})
	if err != nil {
		return domain.Standing{}, err
	}
	return standing, nil
}

// ─── Savings Deposits ───────────────────────────────────────────────────────

// PostSavingsDeposit appends a deposit to the member's savings ledger and
// returns the derived balance. Deposits never touch the fund account.
func (s *Service) PostSavingsDeposit(ctx context.Context, memberID string, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	defer func() { observe("savings_deposit", err) }()

	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		_, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		m, err := st.GetMember(memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMemberNotFound
		}
		entry := domain.SavingsEntry{
			ID:        newID(),
			MemberID:  memberID,
			SessionID: session.ID,
			Type:      domain.SavingsDeposit,
			Amount:    amount,
			CreatedAt: s.now().UTC(),
		}
		if err := st.InsertSavingsEntry(entry); err != nil {
			return err
		}
		balance, err = st.SavingsBalance(memberID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
