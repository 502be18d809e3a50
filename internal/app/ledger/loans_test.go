package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// borrower prepares a member in good standing with the given savings.
func borrower(t *testing.T, svc *Service, savings string) *domain.Member {
	t.Helper()
	m := goodMember(t, svc, "Emprunteur")
	if _, err := svc.PostSavingsDeposit(context.Background(), m.ID, dec(t, savings)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	return m
}

func TestLoanCeilingIsSavingsTimesMultiplier(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()
	m := borrower(t, svc, "100000")

	_, err := svc.RequestLoan(ctx, m.ID, dec(t, "300001"))
	if !errors.Is(err, domain.ErrExceedsMax) {
		t.Fatalf("err = %v, want ErrExceedsMax", err)
	}

	loan, err := svc.RequestLoan(ctx, m.ID, dec(t, "300000"))
	if err != nil {
		t.Fatalf("loan at ceiling: %v", err)
	}
	if !loan.TotalDue.Equal(dec(t, "315000")) {
		t.Errorf("total due = %s, want 315000", loan.TotalDue)
	}
	if !loan.DueDate.Equal(date(2026, 5, 9)) {
		t.Errorf("due date = %s, want 2026-05-09", loan.DueDate.Format("2006-01-02"))
	}

	// One open loan at a time; the open-loan check precedes the standing
	// check, so the caller learns the precise reason.
	_, err = svc.RequestLoan(ctx, m.ID, dec(t, "1000"))
	if !errors.Is(err, domain.ErrAlreadyBorrowing) {
		t.Errorf("second loan err = %v, want ErrAlreadyBorrowing", err)
	}
}

func TestLoanValidations(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	if _, err := svc.RequestLoan(ctx, "nobody", decimal.Zero); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero amount err = %v, want ErrInvalidAmount", err)
	}

	fresh, err := svc.CreateMember(ctx, "Sans Droits")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := svc.RequestLoan(ctx, fresh.ID, dec(t, "1000")); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("ineligible err = %v, want ErrNotEligible", err)
	}
}

func TestLoanWithdrawsSavings(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()
	m := borrower(t, svc, "100000")

	if _, err := svc.RequestLoan(ctx, m.ID, dec(t, "40000")); err != nil {
		t.Fatalf("loan: %v", err)
	}
	snap, err := svc.GetMemberSnapshot(ctx, m.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.SavingsBalance.Equal(dec(t, "60000")) {
		t.Errorf("savings = %s, want 60000", snap.SavingsBalance)
	}
	if snap.OpenLoan == nil {
		t.Fatal("no open loan in snapshot")
	}
	if snap.Standing.InGoodStanding {
		t.Error("borrower with outstanding loan reported in good standing")
	}
}

func TestRepaymentSplitAndRedistribution(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	saver := goodMember(t, svc, "Épargnante")
	if _, err := svc.PostSavingsDeposit(ctx, saver.ID, dec(t, "50000")); err != nil {
		t.Fatalf("saver deposit: %v", err)
	}
	m := borrower(t, svc, "100000")

	loan, err := svc.RequestLoan(ctx, m.ID, dec(t, "100000"))
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	if !loan.TotalDue.Equal(dec(t, "105000")) {
		t.Fatalf("total due = %s, want 105000", loan.TotalDue)
	}

	// First installment covers the whole principal: all capital, no interest.
	rep, err := svc.ApplyRepayment(ctx, loan.ID, dec(t, "100000"))
	if err != nil {
		t.Fatalf("repayment: %v", err)
	}
	if !rep.Capital.Equal(dec(t, "100000")) || !rep.Interest.IsZero() {
		t.Errorf("split = %s/%s, want 100000/0", rep.Capital, rep.Interest)
	}
	snap, _ := svc.GetMemberSnapshot(ctx, m.ID)
	if snap.OpenLoan == nil || snap.OpenLoan.Status != domain.LoanActive {
		t.Fatalf("loan not active after partial repayment: %+v", snap.OpenLoan)
	}
	if !snap.LoanRemaining.Equal(dec(t, "5000")) {
		t.Errorf("remaining = %s, want 5000", snap.LoanRemaining)
	}
	// Capital portion returned to the borrower's savings.
	if !snap.SavingsBalance.Equal(dec(t, "100000")) {
		t.Errorf("savings = %s, want 100000", snap.SavingsBalance)
	}

	// Second installment is pure interest; it is redistributed to savers in
	// good standing. The borrower still carries the open loan at that point
	// and receives nothing.
	rep, err = svc.ApplyRepayment(ctx, loan.ID, dec(t, "5000"))
	if err != nil {
		t.Fatalf("settling repayment: %v", err)
	}
	if !rep.Capital.IsZero() || !rep.Interest.Equal(dec(t, "5000")) {
		t.Errorf("split = %s/%s, want 0/5000", rep.Capital, rep.Interest)
	}

	snap, _ = svc.GetMemberSnapshot(ctx, m.ID)
	if snap.OpenLoan != nil {
		t.Errorf("loan still open after settlement: %+v", snap.OpenLoan)
	}
	if !snap.Standing.InGoodStanding {
		t.Error("borrower not restored to good standing after settlement")
	}

	saverSnap, _ := svc.GetMemberSnapshot(ctx, saver.ID)
	if !saverSnap.SavingsBalance.Equal(dec(t, "55000")) {
		t.Errorf("saver savings = %s, want 55000", saverSnap.SavingsBalance)
	}

	// Settled is terminal.
	_, err = svc.ApplyRepayment(ctx, loan.ID, dec(t, "1"))
	if !errors.Is(err, domain.ErrNotRepayable) {
		t.Errorf("err = %v, want ErrNotRepayable", err)
	}
}

func TestRepaymentCannotExceedOutstanding(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()
	m := borrower(t, svc, "10000")

	loan, err := svc.RequestLoan(ctx, m.ID, dec(t, "10000"))
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	_, err = svc.ApplyRepayment(ctx, loan.ID, dec(t, "10501"))
	if !errors.Is(err, domain.ErrExceedsOutstanding) {
		t.Errorf("err = %v, want ErrExceedsOutstanding", err)
	}
}

func TestConcurrentRepaymentsOneWins(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()
	m := borrower(t, svc, "10000")

	loan, err := svc.RequestLoan(ctx, m.ID, dec(t, "10000"))
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	// Bring the outstanding balance down to exactly 5000.
	if _, err := svc.ApplyRepayment(ctx, loan.ID, dec(t, "5500")); err != nil {
		t.Fatalf("first repayment: %v", err)
	}

	amounts := []string{"3000", "4000"}
	errs := make([]error, len(amounts))
	var wg sync.WaitGroup
	for i, a := range amounts {
		wg.Add(1)
		go func(i int, amount decimal.Decimal) {
			defer wg.Done()
			_, errs[i] = svc.ApplyRepayment(ctx, loan.ID, amount)
		}(i, dec(t, a))
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrExceedsOutstanding):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("outcomes = %d ok / %d rejected, want 1/1", ok, rejected)
	}

	snap, err := svc.GetMemberSnapshot(ctx, m.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.LoanRemaining.IsNegative() {
		t.Errorf("remaining went negative: %s", snap.LoanRemaining)
	}
}

func TestOverdueRepaymentFlipsLoanLate(t *testing.T) {
	svc, clock, _ := newActiveService(t)
	ctx := context.Background()
	m := borrower(t, svc, "10000")

	loan, err := svc.RequestLoan(ctx, m.ID, dec(t, "10000"))
	if err != nil {
		t.Fatalf("loan: %v", err)
	}

	// A partial repayment past the due date re-derives the status on the
	// spot; the loan must not sit ACTIVE until the next sweep.
	clock.advanceDays(svc.params.LoanTermDays + 5)
	if _, err := svc.ApplyRepayment(ctx, loan.ID, dec(t, "1000")); err != nil {
		t.Fatalf("overdue repayment: %v", err)
	}
	got, err := svc.db.Read().GetLoan(loan.ID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if got.Status != domain.LoanLate {
		t.Errorf("status after overdue repayment = %s, want %s", got.Status, domain.LoanLate)
	}

	// Settling still wins over lateness.
	if _, err := svc.ApplyRepayment(ctx, loan.ID, dec(t, "9500")); err != nil {
		t.Fatalf("settling repayment: %v", err)
	}
	got, err = svc.db.Read().GetLoan(loan.ID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if got.Status != domain.LoanSettled {
		t.Errorf("status after settlement = %s, want %s", got.Status, domain.LoanSettled)
	}
}

func TestReconcileLateLoansIdempotent(t *testing.T) {
	svc, clock, _ := newActiveService(t)
	ctx := context.Background()
	m := borrower(t, svc, "10000")

	loan, err := svc.RequestLoan(ctx, m.ID, dec(t, "10000"))
	if err != nil {
		t.Fatalf("loan: %v", err)
	}

	changed, err := svc.ReconcileLateLoans(ctx)
	if err != nil || changed != 0 {
		t.Fatalf("before due date: changed = %d, err = %v", changed, err)
	}

	clock.advanceDays(svc.params.LoanTermDays + 1)
	changed, err = svc.ReconcileLateLoans(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}
	changed, err = svc.ReconcileLateLoans(ctx)
	if err != nil || changed != 0 {
		t.Errorf("second run: changed = %d, err = %v, want 0, nil", changed, err)
	}

	// Late loans still accept repayments; settling one wins over lateness.
	if _, err := svc.ApplyRepayment(ctx, loan.ID, dec(t, "10500")); err != nil {
		t.Fatalf("repay late loan: %v", err)
	}
	stats, err := svc.LoanStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Settled != 1 || stats.Late != 0 {
		t.Errorf("stats = %+v, want 1 settled, 0 late", stats)
	}
}

func TestLoanStats(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	a := borrower(t, svc, "20000")
	b := goodMember(t, svc, "Autre")
	if _, err := svc.PostSavingsDeposit(ctx, b.ID, dec(t, "20000")); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	la, err := svc.RequestLoan(ctx, a.ID, dec(t, "10000"))
	if err != nil {
		t.Fatalf("loan a: %v", err)
	}
	if _, err := svc.RequestLoan(ctx, b.ID, dec(t, "20000")); err != nil {
		t.Fatalf("loan b: %v", err)
	}
	if _, err := svc.ApplyRepayment(ctx, la.ID, dec(t, "10500")); err != nil {
		t.Fatalf("settle a: %v", err)
	}

	stats, err := svc.LoanStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Active != 1 || stats.Settled != 1 {
		t.Errorf("counts = %+v", stats)
	}
	if !stats.Outstanding.Equal(dec(t, "21000")) {
		t.Errorf("outstanding = %s, want 21000", stats.Outstanding)
	}
	if !stats.TotalIssued.Equal(dec(t, "30000")) {
		t.Errorf("issued = %s, want 30000", stats.TotalIssued)
	}
}
