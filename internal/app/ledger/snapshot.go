package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Snapshots ──────────────────────────────────────────────────────────────
// Read-only dashboard projections. Balances are re-derived from the ledgers,
// never trusted from caches.

// MemberSnapshot is the per-member dashboard.
type MemberSnapshot struct {
	Member         domain.Member              `json:"member"`
	Standing       domain.Standing            `json:"standing"`
	SavingsBalance decimal.Decimal            `json:"savings_balance"`
	OpenLoan       *domain.Loan               `json:"open_loan,omitempty"`
	LoanRemaining  decimal.Decimal            `json:"loan_remaining"`
	Debts          []domain.ReplenishmentDebt `json:"debts"`
	DebtRemaining  decimal.Decimal            `json:"debt_remaining"`
}

// GetMemberSnapshot assembles a member's full position.
func (s *Service) GetMemberSnapshot(ctx context.Context, memberID string) (MemberSnapshot, error) {
	st := s.db.Read()

	m, err := st.GetMember(memberID)
	if err != nil {
		return MemberSnapshot{}, err
	}
	if m == nil {
		return MemberSnapshot{}, domain.ErrMemberNotFound
	}

	facts, err := s.memberFacts(st, m)
	if err != nil {
		return MemberSnapshot{}, err
	}
	snap := MemberSnapshot{
		Member:        *m,
		Standing:      domain.Evaluate(facts),
		LoanRemaining: facts.LoanRemaining,
		DebtRemaining: decimal.Zero,
	}

	if snap.SavingsBalance, err = st.SavingsBalance(memberID); err != nil {
		return MemberSnapshot{}, err
	}
	if snap.OpenLoan, err = st.OpenLoanForMember(memberID); err != nil {
		return MemberSnapshot{}, err
	}
	if snap.Debts, err = st.ListDebtsForMember(memberID); err != nil {
		return MemberSnapshot{}, err
	}
	for _, d := range snap.Debts {
		snap.DebtRemaining = snap.DebtRemaining.Add(d.Remaining())
	}
	return snap, nil
}

// FundSnapshot is the per-period fund dashboard. JournalSum is the signed
// sum of movements; it always equals Balance.
type FundSnapshot struct {
	Fund       domain.FundAccount    `json:"fund"`
	JournalSum decimal.Decimal       `json:"journal_sum"`
	Movements  []domain.FundMovement `json:"movements"`
}

// GetFundSnapshot assembles a period's fund position.
func (s *Service) GetFundSnapshot(ctx context.Context, periodID string) (FundSnapshot, error) {
	st := s.db.Read()

	p, err := st.GetPeriod(periodID)
	if err != nil {
		return FundSnapshot{}, err
	}
	if p == nil {
		return FundSnapshot{}, domain.ErrPeriodNotFound
	}

	// Missing fund reads as an empty account; dashboards never write.
	fund, err := st.GetFund(periodID)
	if err != nil {
		return FundSnapshot{}, err
	}
	if fund == nil {
		fund = &domain.FundAccount{PeriodID: periodID, Balance: decimal.Zero}
	}
	snap := FundSnapshot{Fund: *fund}
	if fund.ID == "" {
		return snap, nil
	}
	if snap.JournalSum, err = st.SumMovements(fund.ID); err != nil {
		return FundSnapshot{}, err
	}
	if snap.Movements, err = st.ListMovements(fund.ID, 50); err != nil {
		return FundSnapshot{}, err
	}
	return snap, nil
}

// SystemSnapshot is the association-wide dashboard. TotalLiquidity is fund
// balance plus total savings; Commitments is the outstanding loan remainder.
type SystemSnapshot struct {
	FundBalance    decimal.Decimal `json:"fund_balance"`
	TotalSavings   decimal.Decimal `json:"total_savings"`
	TotalLiquidity decimal.Decimal `json:"total_liquidity"`
	Commitments    decimal.Decimal `json:"commitments"`
	Members        int             `json:"members"`
	InGoodStanding int             `json:"in_good_standing"`
	Loans          LoanStatistics  `json:"loans"`
}

// GetSystemSnapshot assembles the association-wide figures for the active
// period.
func (s *Service) GetSystemSnapshot(ctx context.Context) (SystemSnapshot, error) {
	st := s.db.Read()

	period, err := st.ActivePeriod()
	if err != nil {
		return SystemSnapshot{}, err
	}
	if period == nil {
		return SystemSnapshot{}, domain.ErrNoActivePeriod
	}
	fund, err := st.GetFund(period.ID)
	if err != nil {
		return SystemSnapshot{}, err
	}

	snap := SystemSnapshot{FundBalance: decimal.Zero}
	if fund != nil {
		snap.FundBalance = fund.Balance
	}
	if snap.TotalSavings, err = st.TotalSavings(); err != nil {
		return SystemSnapshot{}, err
	}
	snap.TotalLiquidity = snap.FundBalance.Add(snap.TotalSavings)

	members, err := st.ListMembers()
	if err != nil {
		return SystemSnapshot{}, err
	}
	snap.Members = len(members)
	for _, m := range members {
		if m.Status == domain.MemberInGoodStanding {
			snap.InGoodStanding++
		}
	}

	if snap.Loans, err = s.LoanStats(ctx); err != nil {
		return SystemSnapshot{}, err
	}
	snap.Commitments = snap.Loans.Outstanding
	return snap, nil
}
