package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Operations wrap
// these with the numeric context the caller needs (requested vs available).

var (
	// Fund errors
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Loan errors
	ErrNotEligible        = errors.New("member is not in good standing")
	ErrAlreadyBorrowing   = errors.New("member already has an open loan")
	ErrExceedsMax         = errors.New("amount exceeds maximum borrowable")
	ErrExceedsOutstanding = errors.New("amount exceeds outstanding balance")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotRepayable       = errors.New("loan is not repayable")

	// Period errors
	ErrNoActivePeriod  = errors.New("no active period")
	ErrNoActiveSession = errors.New("no active session")

	// Replenishment errors
	ErrNoEligibleMembers = errors.New("no eligible members")

	// Assistance errors
	ErrGrantNotPayable = errors.New("grant is not payable")

	// Transient contention — callers may retry
	ErrConflictRetryable = errors.New("transaction conflict, retry")

	// Lookup errors
	ErrMemberNotFound  = errors.New("member not found")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrDebtNotFound    = errors.New("replenishment debt not found")
	ErrGrantNotFound   = errors.New("assistance grant not found")
	ErrPeriodNotFound  = errors.New("period not found")
	ErrSessionNotFound = errors.New("session not found")
)

// AmountError wraps a sentinel with the requested and limiting amounts so the
// caller can explain the rejection.
func AmountError(kind error, requested, limit decimal.Decimal) error {
	return fmt.Errorf("%w: requested %s, limit %s", kind, requested.StringFixed(2), limit.StringFixed(2))
}
