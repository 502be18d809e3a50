package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// fundedAssociation sets up n members in good standing and tops the fund up
// with extra solidarity so payouts can clear.
func fundedAssociation(t *testing.T, svc *Service, n int, extraEach string) []*domain.Member {
	t.Helper()
	ctx := context.Background()
	members := make([]*domain.Member, n)
	for i := range members {
		members[i] = goodMember(t, svc, "Membre")
		if _, err := svc.PostSolidarityPayment(ctx, members[i].ID, dec(t, extraEach)); err != nil {
			t.Fatalf("extra solidarity: %v", err)
		}
	}
	return members
}

func TestAssistancePayoutDistributesDebts(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	// 3 × (5000 + 20000) = 75000 in the fund.
	members := fundedAssociation(t, svc, 3, "20000")

	typ, err := svc.CreateAssistanceType(ctx, "Mariage", dec(t, "60000"))
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	grant, err := svc.GrantAssistance(ctx, members[0].ID, typ.ID, decimal.Zero, "mariage")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !grant.Amount.Equal(dec(t, "60000")) {
		t.Fatalf("grant amount = %s, want the type default 60000", grant.Amount)
	}
	if err := svc.ApproveGrant(ctx, grant.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	paid, err := svc.MarkAssistancePaid(ctx, grant.ID)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != domain.GrantPaid || paid.PaidAt == nil {
		t.Fatalf("grant after payout: %+v", paid)
	}

	period, _ := svc.ActivePeriod(ctx)
	fund, err := svc.GetFundSnapshot(ctx, period.ID)
	if err != nil {
		t.Fatalf("fund snapshot: %v", err)
	}
	if !fund.Fund.Balance.Equal(dec(t, "15000")) {
		t.Errorf("fund = %s, want 15000 after 60000 payout", fund.Fund.Balance)
	}

	// Every eligible member carries exactly one debt of 20000 and drops out
	// of good standing until it is settled.
	for _, m := range members {
		snap, err := svc.GetMemberSnapshot(ctx, m.ID)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(snap.Debts) != 1 {
			t.Fatalf("member %s debts = %d, want 1", m.MemberNo, len(snap.Debts))
		}
		if !snap.Debts[0].AmountDue.Equal(dec(t, "20000")) {
			t.Errorf("debt = %s, want 20000", snap.Debts[0].AmountDue)
		}
		if snap.Standing.InGoodStanding {
			t.Errorf("member %s still in good standing with open debt", m.MemberNo)
		}
	}

	// Paying twice is a no-op: no second debit, no duplicate debts.
	if _, err := svc.MarkAssistancePaid(ctx, grant.ID); err != nil {
		t.Fatalf("second pay: %v", err)
	}
	fund, _ = svc.GetFundSnapshot(ctx, period.ID)
	if !fund.Fund.Balance.Equal(dec(t, "15000")) {
		t.Errorf("fund moved on repeated payout: %s", fund.Fund.Balance)
	}
}

func TestAssistanceRejectedWhenFundShort(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	members := fundedAssociation(t, svc, 2, "1000") // fund = 12000

	typ, _ := svc.CreateAssistanceType(ctx, "Décès", dec(t, "50000"))
	grant, err := svc.GrantAssistance(ctx, members[0].ID, typ.ID, decimal.Zero, "")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	_, err = svc.MarkAssistancePaid(ctx, grant.ID)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// The failed payout left nothing behind.
	for _, m := range members {
		snap, _ := svc.GetMemberSnapshot(ctx, m.ID)
		if len(snap.Debts) != 0 {
			t.Errorf("debts created by failed payout: %d", len(snap.Debts))
		}
	}
	g, err := svc.db.Read().GetGrant(grant.ID)
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if g.Status != domain.GrantRequested {
		t.Errorf("grant status = %s, want REQUESTED", g.Status)
	}
}

func TestRejectedGrantNotPayable(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	members := fundedAssociation(t, svc, 1, "100000")
	typ, _ := svc.CreateAssistanceType(ctx, "Mariage", dec(t, "10000"))
	grant, _ := svc.GrantAssistance(ctx, members[0].ID, typ.ID, decimal.Zero, "")
	if err := svc.RejectGrant(ctx, grant.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := svc.MarkAssistancePaid(ctx, grant.ID)
	if !errors.Is(err, domain.ErrGrantNotPayable) {
		t.Errorf("err = %v, want ErrGrantNotPayable", err)
	}
}

func TestDistributeShareTolerance(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	members := fundedAssociation(t, svc, 3, "20000")

	typ, _ := svc.CreateAssistanceType(ctx, "Autre", dec(t, "100"))
	grant, _ := svc.GrantAssistance(ctx, members[0].ID, typ.ID, decimal.Zero, "")
	if _, err := svc.MarkAssistancePaid(ctx, grant.ID); err != nil {
		t.Fatalf("pay: %v", err)
	}

	// 100 / 3 → 33.33 each; the sum misses the source by at most one cent
	// per member, and the residual stays unassigned.
	total := decimal.Zero
	for _, m := range members {
		snap, _ := svc.GetMemberSnapshot(ctx, m.ID)
		if len(snap.Debts) != 1 {
			t.Fatalf("debts = %d, want 1", len(snap.Debts))
		}
		if !snap.Debts[0].AmountDue.Equal(dec(t, "33.33")) {
			t.Errorf("share = %s, want 33.33", snap.Debts[0].AmountDue)
		}
		total = total.Add(snap.Debts[0].AmountDue)
	}
	tolerance := dec(t, "0.01").Mul(decimal.NewFromInt(int64(len(members))))
	if dec(t, "100").Sub(total).Abs().GreaterThan(tolerance) {
		t.Errorf("Σ shares = %s, outside tolerance of 100", total)
	}
}

func TestReplenishmentPaymentRestoresStanding(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	members := fundedAssociation(t, svc, 2, "20000") // fund = 50000

	typ, _ := svc.CreateAssistanceType(ctx, "Décès", dec(t, "40000"))
	grant, _ := svc.GrantAssistance(ctx, members[0].ID, typ.ID, decimal.Zero, "")
	if _, err := svc.MarkAssistancePaid(ctx, grant.ID); err != nil {
		t.Fatalf("pay: %v", err)
	}

	snap, _ := svc.GetMemberSnapshot(ctx, members[1].ID)
	debt := snap.Debts[0]

	// Partial then settling installments; settling restores standing and
	// the money flows back into the fund. The last installment overpays:
	// any positive amount is accepted, the surplus stays in the fund and
	// the remaining balance bottoms out at zero.
	standing, err := svc.ApplyReplenishmentPayment(ctx, debt.ID, dec(t, "12000"))
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if standing.InGoodStanding {
		t.Error("standing restored before debt settled")
	}
	standing, err = svc.ApplyReplenishmentPayment(ctx, debt.ID, dec(t, "8001"))
	if err != nil {
		t.Fatalf("overpaying settlement: %v", err)
	}
	if !standing.InGoodStanding {
		t.Error("standing not restored after settling debt")
	}
	snap, _ = svc.GetMemberSnapshot(ctx, members[1].ID)
	if !snap.DebtRemaining.IsZero() {
		t.Errorf("debt remaining = %s, want 0 after overpayment", snap.DebtRemaining)
	}

	period, _ := svc.ActivePeriod(ctx)
	fund, _ := svc.GetFundSnapshot(ctx, period.ID)
	if !fund.Fund.Balance.Equal(dec(t, "30001")) {
		t.Errorf("fund = %s, want 30001 (10000 + 20001 repaid)", fund.Fund.Balance)
	}
}

func TestCollationDebitsAndDistributesAtomically(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	members := fundedAssociation(t, svc, 2, "3000") // fund = 16000

	// A collation beyond the fund rejects the whole session activation.
	_, err := svc.ActivateSession(ctx, date(2026, time.April, 9), "", dec(t, "30000"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	period, _ := svc.ActivePeriod(ctx)
	current, err := svc.db.Read().ActiveSession(period.ID)
	if err != nil || current == nil {
		t.Fatalf("active session after failed activation: %v, %v", current, err)
	}
	if !current.Date.Equal(date(2026, time.March, 10)) {
		t.Errorf("active session moved to %s", current.Date.Format("2006-01-02"))
	}

	// An affordable collation debits the fund and splits the cost.
	sess, err := svc.ActivateSession(ctx, date(2026, time.April, 9), "", dec(t, "10000"))
	if err != nil {
		t.Fatalf("activate with collation: %v", err)
	}
	if sess.Name != "Session Avril 2026" {
		t.Errorf("session name = %q", sess.Name)
	}
	fund, _ := svc.GetFundSnapshot(ctx, period.ID)
	if !fund.Fund.Balance.Equal(dec(t, "6000")) {
		t.Errorf("fund = %s, want 6000", fund.Fund.Balance)
	}
	for _, m := range members {
		snap, _ := svc.GetMemberSnapshot(ctx, m.ID)
		if len(snap.Debts) != 1 || !snap.Debts[0].AmountDue.Equal(dec(t, "5000")) {
			t.Errorf("member %s debts = %+v, want one of 5000", m.MemberNo, snap.Debts)
		}
	}
}

func TestSimulateReplenishment(t *testing.T) {
	svc, _, _ := newActiveService(t)
	ctx := context.Background()

	fundedAssociation(t, svc, 3, "1000")

	sim, err := svc.SimulateReplenishment(ctx, dec(t, "100"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if sim.MemberCount != 3 {
		t.Errorf("count = %d, want 3", sim.MemberCount)
	}
	if !sim.Share.Equal(dec(t, "33.33")) {
		t.Errorf("share = %s, want 33.33", sim.Share)
	}
	if !sim.Collected.Equal(dec(t, "99.99")) {
		t.Errorf("collected = %s, want 99.99", sim.Collected)
	}

	// Simulation writes nothing.
	members, _ := svc.ListMembers(ctx)
	for _, m := range members {
		snap, _ := svc.GetMemberSnapshot(ctx, m.ID)
		if len(snap.Debts) != 0 {
			t.Errorf("simulation created debts for %s", m.MemberNo)
		}
	}
}
