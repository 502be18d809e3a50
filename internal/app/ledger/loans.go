package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// ─── Loans ──────────────────────────────────────────────────────────────────

// RequestLoan issues a loan to a member. Checks, in order: positive amount,
// active session, no open loan, member in good standing, principal within
// savings × multiplier. The principal leaves the member's savings ledger as a
// negative withdrawal entry; the fund account is untouched. A principal above
// the fund balance is allowed but logged as a liquidity warning.
func (s *Service) RequestLoan(ctx context.Context, memberID string, principal decimal.Decimal) (loan *domain.Loan, err error) {
	defer func() { observe("request_loan", err) }()

	if !principal.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	issued := s.today()
	l := domain.Loan{
		ID:        newID(),
		MemberID:  memberID,
		Principal: principal,
		Rate:      s.params.InterestRate,
		TotalDue:  domain.TotalDueFor(principal, s.params.InterestRate),
		Repaid:    decimal.Zero,
		IssuedAt:  issued,
		DueDate:   issued.AddDate(0, 0, s.params.LoanTermDays),
		Status:    domain.LoanActive,
		CreatedAt: s.now().UTC(),
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		l.SessionID = session.ID

		m, err := st.GetMember(memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMemberNotFound
		}

		open, err := st.OpenLoanForMember(memberID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrAlreadyBorrowing
		}

		// Standing is re-derived from facts under the lock, not read from
		// the cached projection.
		facts, err := s.memberFacts(st, m)
		if err != nil {
			return err
		}
		if !domain.Evaluate(facts).InGoodStanding || m.Status == domain.MemberSuspended {
			return domain.ErrNotEligible
		}

		savings, err := st.SavingsBalance(memberID)
		if err != nil {
			return err
		}
		max := savings.Mul(decimal.NewFromInt(s.params.LoanMultiplier))
		if principal.GreaterThan(max) {
			return domain.AmountError(domain.ErrExceedsMax, principal, max)
		}

		if err := st.InsertLoan(l); err != nil {
			return err
		}
		withdrawal := domain.SavingsEntry{
			ID:        newID(),
			MemberID:  memberID,
			SessionID: session.ID,
			Type:      domain.SavingsLoanWithdrawal,
			Amount:    principal.Neg(),
			CreatedAt: s.now().UTC(),
		}
		if err := st.InsertSavingsEntry(withdrawal); err != nil {
			return err
		}

		fund, err := st.EnsureFund(period.ID, s.now().UTC())
		if err != nil {
			return err
		}
		if principal.GreaterThan(fund.Balance) {
			s.log.WithFields(logrus.Fields{
				"member":    m.MemberNo,
				"principal": principal.StringFixed(2),
				"fund":      fund.Balance.StringFixed(2),
			}).Warn("loan principal exceeds fund balance")
		}
		_, err = s.refreshStanding(st, memberID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"member":    memberID,
		"principal": principal.StringFixed(2),
		"total_due": l.TotalDue.StringFixed(2),
		"due_date":  l.DueDate.Format("2006-01-02"),
	}).Info("loan issued")
	return &l, nil
}

// ApplyRepayment applies one installment to a loan. The amount is split
// capital-first; the capital portion returns to the borrower's savings and
// the interest portion is redistributed pro-rata by savings balance among
// members in good standing with positive savings. The amount may not exceed
// the outstanding balance; settling is detected and persisted atomically.
func (s *Service) ApplyRepayment(ctx context.Context, loanID string, amount decimal.Decimal) (rep *domain.Repayment, err error) {
	defer func() { observe("apply_repayment", err) }()

	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	var repayment domain.Repayment
	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		_, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		loan, err := st.GetLoan(loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return domain.ErrLoanNotFound
		}
		if !loan.Repayable() {
			return domain.ErrNotRepayable
		}
		remaining := loan.Remaining()
		if amount.GreaterThan(remaining) {
			return domain.AmountError(domain.ErrExceedsOutstanding, amount, remaining)
		}

		repaidCapital, err := st.SumRepaidCapital(loanID)
		if err != nil {
			return err
		}
		capital, interest := domain.SplitRepayment(amount, loan.Principal.Sub(repaidCapital))

		repayment = domain.Repayment{
			ID:        newID(),
			LoanID:    loanID,
			SessionID: session.ID,
			Amount:    amount,
			Capital:   capital,
			Interest:  interest,
			CreatedAt: s.now().UTC(),
		}
		if err := st.InsertRepayment(repayment); err != nil {
			return err
		}

		if capital.IsPositive() {
			back := domain.SavingsEntry{
				ID:        newID(),
				MemberID:  loan.MemberID,
				SessionID: session.ID,
				Type:      domain.SavingsRepaymentReturn,
				Amount:    capital,
				CreatedAt: s.now().UTC(),
			}
			if err := st.InsertSavingsEntry(back); err != nil {
				return err
			}
		}

		// The full status derivation runs on every write: a partial
		// repayment past the due date lands the loan in Late without
		// waiting for the daily sweep.
		after := *loan
		after.Repaid = loan.Repaid.Add(amount)
		if err := st.UpdateLoanProgress(loanID, after.Repaid, after.ResolveStatus(s.today())); err != nil {
			return err
		}

		if interest.IsPositive() {
			if err := s.redistributeInterest(st, session.ID, interest); err != nil {
				return err
			}
		}
		_, err = s.refreshStanding(st, loan.MemberID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"loan":     loanID,
		"amount":   amount.StringFixed(2),
		"capital":  repayment.Capital.StringFixed(2),
		"interest": repayment.Interest.StringFixed(2),
	}).Info("repayment applied")
	return &repayment, nil
}

// redistributeInterest credits each qualifying member with a pro-rata share
// of an interest portion, weighted by savings balance. Residuals from
// rounding stay unassigned. Interest with nobody to receive it is dropped
// with a warning rather than blocking the repayment.
func (s *Service) redistributeInterest(st *sqlite.Store, sessionID string, interest decimal.Decimal) error {
	members, err := st.ListMembersInGoodStanding()
	if err != nil {
		return err
	}

	type share struct {
		memberID string
		balance  decimal.Decimal
	}
	var shares []share
	total := decimal.Zero
	for _, m := range members {
		balance, err := st.SavingsBalance(m.ID)
		if err != nil {
			return err
		}
		if balance.IsPositive() {
			shares = append(shares, share{m.ID, balance})
			total = total.Add(balance)
		}
	}
	if len(shares) == 0 {
		s.log.WithField("interest", interest.StringFixed(2)).
			Warn("no member qualifies for interest redistribution")
		return nil
	}

	now := s.now().UTC()
	for _, sh := range shares {
		credit := domain.ProRataShare(interest, sh.balance, total)
		if !credit.IsPositive() {
			continue
		}
		entry := domain.SavingsEntry{
			ID:        newID(),
			MemberID:  sh.memberID,
			SessionID: sessionID,
			Type:      domain.SavingsInterestCredit,
			Amount:    credit,
			CreatedAt: now,
		}
		if err := st.InsertSavingsEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileLateLoans flips open loans past their due date to Late. Safe to
// run any number of times; returns how many loans changed.
func (s *Service) ReconcileLateLoans(ctx context.Context) (changed int, err error) {
	defer func() { observe("reconcile_late_loans", err) }()

	today := s.today()
	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		loans, err := st.ListOpenLoans()
		if err != nil {
			return err
		}
		for _, l := range loans {
			next := l.ResolveStatus(today)
			if next == l.Status {
				continue
			}
			if err := st.UpdateLoanStatus(l.ID, next); err != nil {
				return err
			}
			changed++
			s.log.WithFields(logrus.Fields{"loan": l.ID, "status": next}).Info("loan status reconciled")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// LoanStatistics aggregates loan counts and amounts by status.
type LoanStatistics struct {
	Active      int             `json:"active"`
	Late        int             `json:"late"`
	Settled     int             `json:"settled"`
	Outstanding decimal.Decimal `json:"outstanding"`
	TotalIssued decimal.Decimal `json:"total_issued"`
	TotalRepaid decimal.Decimal `json:"total_repaid"`
}

// LoanStats computes the loan dashboard figures.
func (s *Service) LoanStats(ctx context.Context) (LoanStatistics, error) {
	loans, err := s.db.Read().ListLoans()
	if err != nil {
		return LoanStatistics{}, err
	}
	stats := LoanStatistics{
		Outstanding: decimal.Zero,
		TotalIssued: decimal.Zero,
		TotalRepaid: decimal.Zero,
	}
	for _, l := range loans {
		switch l.Status {
		case domain.LoanActive:
			stats.Active++
		case domain.LoanLate:
			stats.Late++
		case domain.LoanSettled:
			stats.Settled++
		}
		stats.TotalIssued = stats.TotalIssued.Add(l.Principal)
		stats.TotalRepaid = stats.TotalRepaid.Add(l.Repaid)
		if l.Status != domain.LoanSettled {
			stats.Outstanding = stats.Outstanding.Add(l.Remaining())
		}
	}
	return stats, nil
}
