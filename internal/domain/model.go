// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the engine — it depends on nothing but the
// money type.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ─── Period & Session ───────────────────────────────────────────────────────

// PeriodStatus is the lifecycle state of an accounting period (exercise).
type PeriodStatus string

const (
	PeriodPlanned PeriodStatus = "PLANNED"
	PeriodActive  PeriodStatus = "ACTIVE"
	PeriodClosed  PeriodStatus = "CLOSED"
)

// Period is a long accounting cycle (typically one year) containing sessions.
// Exactly one period is active system-wide.
type Period struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Status    PeriodStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// DefaultName derives the period name from its start year.
func (p Period) DefaultName() string {
	return fmt.Sprintf("Exercice %d", p.StartDate.Year())
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionPlanned SessionStatus = "PLANNED"
	SessionActive  SessionStatus = "ACTIVE"
	SessionClosed  SessionStatus = "CLOSED"
)

// Session is a sub-period (typically monthly) in which dues are collected and
// loans and repayments are posted. At most one session per period is active.
type Session struct {
	ID              string          `json:"id"`
	PeriodID        string          `json:"period_id"`
	Name            string          `json:"name"`
	Date            time.Time       `json:"date"`
	CollationAmount decimal.Decimal `json:"collation_amount"`
	Status          SessionStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DefaultName derives the session name from its date.
func (s Session) DefaultName() string {
	return fmt.Sprintf("Session %s %d", frenchMonths[s.Date.Month()-1], s.Date.Year())
}

var frenchMonths = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// ─── Member ─────────────────────────────────────────────────────────────────

// MemberStatus is the cached eligibility projection for a member.
type MemberStatus string

const (
	MemberInGoodStanding    MemberStatus = "IN_GOOD_STANDING"
	MemberNotInGoodStanding MemberStatus = "NOT_IN_GOOD_STANDING"
	MemberSuspended         MemberStatus = "SUSPENDED"
)

// Member is an association member. Status is a projection of the eligibility
// evaluator, recomputed after any event that can change its inputs.
type Member struct {
	ID               string       `json:"id"`
	MemberNo         string       `json:"member_no"`
	FullName         string       `json:"full_name"`
	Status           MemberStatus `json:"status"`
	RegistrationDate time.Time    `json:"registration_date"`
	PeriodID         string       `json:"period_id"`
	SessionID        string       `json:"session_id"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NextMemberNo formats a sequential member number ("ENS-0001", "ENS-0002", ...).
func NextMemberNo(seq int) string {
	return fmt.Sprintf("ENS-%04d", seq)
}

// ─── Fund Account ───────────────────────────────────────────────────────────

// MovementType is the accounting side of a fund movement.
type MovementType string

const (
	MovementCredit MovementType = "CREDIT"
	MovementDebit  MovementType = "DEBIT"
)

// FundAccount is the pooled social fund of one period. Its balance always
// equals the signed sum of its movement journal.
type FundAccount struct {
	ID        string          `json:"id"`
	PeriodID  string          `json:"period_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// FundMovement is one append-only journal row of a fund account.
type FundMovement struct {
	ID          string          `json:"id"`
	FundID      string          `json:"fund_id"`
	Type        MovementType    `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Signed returns the movement amount with its accounting sign.
func (m FundMovement) Signed() decimal.Decimal {
	if m.Type == MovementDebit {
		return m.Amount.Neg()
	}
	return m.Amount
}

// ─── Savings Ledger ─────────────────────────────────────────────────────────

// SavingsEntryType classifies a savings ledger entry.
type SavingsEntryType string

const (
	SavingsDeposit         SavingsEntryType = "DEPOSIT"
	SavingsLoanWithdrawal  SavingsEntryType = "LOAN_WITHDRAWAL"
	SavingsInterestCredit  SavingsEntryType = "INTEREST_CREDIT"
	SavingsRepaymentReturn SavingsEntryType = "REPAYMENT_RETURN"
)

// SavingsEntry is one append-only row of a member's savings ledger. Amounts
// are signed: loan withdrawals are negative, everything else positive. A
// member's balance is always derived as the sum of entries, never stored.
type SavingsEntry struct {
	ID        string           `json:"id"`
	MemberID  string           `json:"member_id"`
	SessionID string           `json:"session_id"`
	Type      SavingsEntryType `json:"type"`
	Amount    decimal.Decimal  `json:"amount"`
	CreatedAt time.Time        `json:"created_at"`
}

// ─── Loans ──────────────────────────────────────────────────────────────────

// LoanStatus is the loan state machine: Active → Late → Settled (terminal).
type LoanStatus string

const (
	LoanActive  LoanStatus = "ACTIVE"
	LoanLate    LoanStatus = "LATE"
	LoanSettled LoanStatus = "SETTLED"
)

// Loan is an interest-bearing loan funded from pooled savings. TotalDue is
// fixed at creation and never recomputed; Repaid is monotonic non-decreasing.
type Loan struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	SessionID string          `json:"session_id"`
	Principal decimal.Decimal `json:"principal"`
	Rate      decimal.Decimal `json:"rate"` // percent, snapshot at creation
	TotalDue  decimal.Decimal `json:"total_due"`
	Repaid    decimal.Decimal `json:"repaid"`
	IssuedAt  time.Time       `json:"issued_at"`
	DueDate   time.Time       `json:"due_date"`
	Status    LoanStatus      `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// TotalDueFor computes principal + principal*rate/100.
func TotalDueFor(principal, rate decimal.Decimal) decimal.Decimal {
	interest := principal.Mul(rate).Div(decimal.NewFromInt(100))
	return RoundHalfUp(principal.Add(interest))
}

// Remaining returns totalDue − repaid, floored at zero.
func (l Loan) Remaining() decimal.Decimal {
	r := l.TotalDue.Sub(l.Repaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Interest returns the fixed interest portion of the loan.
func (l Loan) Interest() decimal.Decimal {
	return l.TotalDue.Sub(l.Principal)
}

// ResolveStatus derives the loan status for a given day. Settled is terminal;
// Late applies when not settled and past the due date. Idempotent.
func (l Loan) ResolveStatus(today time.Time) LoanStatus {
	if l.Repaid.GreaterThanOrEqual(l.TotalDue) {
		return LoanSettled
	}
	if today.After(l.DueDate) {
		return LoanLate
	}
	return LoanActive
}

// Repayable reports whether repayments may still be applied.
func (l Loan) Repayable() bool {
	return l.Status == LoanActive || l.Status == LoanLate
}

// Repayment is one installment on a loan, split between capital and interest
// (capital + interest == amount, always).
type Repayment struct {
	ID        string          `json:"id"`
	LoanID    string          `json:"loan_id"`
	SessionID string          `json:"session_id"`
	Amount    decimal.Decimal `json:"amount"`
	Capital   decimal.Decimal `json:"capital"`
	Interest  decimal.Decimal `json:"interest"`
	CreatedAt time.Time       `json:"created_at"`
}

// SplitRepayment allocates a repayment between capital and interest: capital
// is served first, up to the principal not yet covered by prior repayments.
func SplitRepayment(amount, capitalRemaining decimal.Decimal) (capital, interest decimal.Decimal) {
	if amount.LessThanOrEqual(capitalRemaining) {
		return amount, decimal.Zero
	}
	return capitalRemaining, amount.Sub(capitalRemaining)
}

// ─── Replenishment ──────────────────────────────────────────────────────────

// ReplenishmentCause classifies the fund outflow behind a replenishment round.
type ReplenishmentCause string

const (
	CauseAssistance ReplenishmentCause = "ASSISTANCE"
	CauseCollation  ReplenishmentCause = "COLLATION"
	CauseOther      ReplenishmentCause = "OTHER"
)

// ReplenishmentDebt is one member's equal share of a collective fund outflow.
// AmountPaid ≤ AmountDue is the expected state but overpayment is tolerated.
type ReplenishmentDebt struct {
	ID          string             `json:"id"`
	MemberID    string             `json:"member_id"`
	SessionID   string             `json:"session_id"`
	AmountDue   decimal.Decimal    `json:"amount_due"`
	AmountPaid  decimal.Decimal    `json:"amount_paid"`
	Cause       ReplenishmentCause `json:"cause"`
	CauseDetail string             `json:"cause_detail"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Remaining returns amountDue − amountPaid, floored at zero.
func (d ReplenishmentDebt) Remaining() decimal.Decimal {
	r := d.AmountDue.Sub(d.AmountPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Settled reports whether the debt is fully paid.
func (d ReplenishmentDebt) Settled() bool {
	return d.AmountPaid.GreaterThanOrEqual(d.AmountDue)
}

// ReplenishmentPayment is one installment on a replenishment debt. Payments
// flow back into the fund account.
type ReplenishmentPayment struct {
	ID        string          `json:"id"`
	DebtID    string          `json:"debt_id"`
	SessionID string          `json:"session_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ─── Assistance ─────────────────────────────────────────────────────────────

// AssistanceType is a named fixed-amount assistance category (marriage,
// death, ...).
type AssistanceType struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// GrantStatus is the assistance grant lifecycle.
type GrantStatus string

const (
	GrantRequested GrantStatus = "REQUESTED"
	GrantApproved  GrantStatus = "APPROVED"
	GrantPaid      GrantStatus = "PAID"
	GrantRejected  GrantStatus = "REJECTED"
)

// AssistanceGrant is a lump-sum assistance to one member. Transitioning into
// Paid debits the fund and triggers a replenishment round.
type AssistanceGrant struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"member_id"`
	TypeID        string          `json:"type_id"`
	SessionID     string          `json:"session_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        GrantStatus     `json:"status"`
	Justification string          `json:"justification"`
	RequestedAt   time.Time       `json:"requested_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ─── Configuration snapshot ─────────────────────────────────────────────────

// Params are the association parameters the core consumes. The core never
// reads configuration files; the daemon resolves these once and passes them
// in.
type Params struct {
	RegistrationAmount decimal.Decimal // full registration fee
	SolidarityAmount   decimal.Decimal // solidarity due per session
	InterestRate       decimal.Decimal // percent applied at loan creation
	LoanMultiplier     int64           // max loan = savings × multiplier
	LoanTermDays       int             // grace period before a loan is late
	PeriodMonths       int             // default period duration
}

// DefaultParams returns the association defaults.
func DefaultParams() Params {
	return Params{
		RegistrationAmount: decimal.NewFromInt(5000),
		SolidarityAmount:   decimal.NewFromInt(2000),
		InterestRate:       decimal.NewFromInt(5),
		LoanMultiplier:     3,
		LoanTermDays:       60,
		PeriodMonths:       12,
	}
}
