package domain

import "github.com/shopspring/decimal"

// ─── Eligibility Evaluator ──────────────────────────────────────────────────
// Single source of truth for "in good standing". Pure: callers gather the
// facts, this only combines them. Whether the verdict is persisted onto
// Member.Status is the caller's decision.

// MemberFacts are the four inputs of the eligibility verdict.
type MemberFacts struct {
	RegistrationDue   decimal.Decimal // configured registration fee
	RegistrationPaid  decimal.Decimal
	SolidarityDue     decimal.Decimal // accrued per session since registration
	SolidarityPaid    decimal.Decimal
	ReplenishmentDue  decimal.Decimal // across all debts
	ReplenishmentPaid decimal.Decimal
	LoanRemaining     decimal.Decimal // outstanding balance of any open loan
}

// Standing is the eligibility verdict with its per-condition detail.
type Standing struct {
	InGoodStanding       bool `json:"in_good_standing"`
	RegistrationComplete bool `json:"registration_complete"`
	SolidarityCurrent    bool `json:"solidarity_current"`
	ReplenishmentSettled bool `json:"replenishment_settled"`
	LoanClear            bool `json:"loan_clear"`
}

// LoanRemainingTolerance is the residual below which a loan counts as clear.
// One currency unit absorbs the rounding residue of a settled loan.
var LoanRemainingTolerance = decimal.NewFromInt(1)

// Evaluate combines the four conditions into the verdict. Zero tolerance on
// solidarity and replenishment shortfalls: any positive balance disqualifies.
func Evaluate(f MemberFacts) Standing {
	s := Standing{
		RegistrationComplete: f.RegistrationPaid.GreaterThanOrEqual(f.RegistrationDue),
		SolidarityCurrent:    f.SolidarityPaid.GreaterThanOrEqual(f.SolidarityDue),
		ReplenishmentSettled: f.ReplenishmentPaid.GreaterThanOrEqual(f.ReplenishmentDue),
		LoanClear:            f.LoanRemaining.LessThanOrEqual(LoanRemainingTolerance),
	}
	s.InGoodStanding = s.RegistrationComplete && s.SolidarityCurrent &&
		s.ReplenishmentSettled && s.LoanClear
	return s
}

// Status projects the verdict onto a member status, preserving suspension.
func (s Standing) Status(current MemberStatus) MemberStatus {
	if current == MemberSuspended {
		return MemberSuspended
	}
	if s.InGoodStanding {
		return MemberInGoodStanding
	}
	return MemberNotInGoodStanding
}
