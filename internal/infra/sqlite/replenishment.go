package sqlite

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Replenishment Debt Operations ──────────────────────────────────────────

// InsertDebt creates a replenishment debt. A duplicate (same member, session,
// cause and detail) is silently skipped so distribution is idempotent; the
// return value reports whether a row was actually written.
func (s *Store) InsertDebt(d domain.ReplenishmentDebt) (bool, error) {
	res, err := s.q.Exec(`
		INSERT OR IGNORE INTO replenishment_debts
			(id, member_id, session_id, amount_due, amount_paid, cause, cause_detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.MemberID, d.SessionID, decStr(d.AmountDue), decStr(d.AmountPaid),
		string(d.Cause), d.CauseDetail, timeStr(d.CreatedAt))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetDebt retrieves one replenishment debt, nil when absent.
func (s *Store) GetDebt(id string) (*domain.ReplenishmentDebt, error) {
	row := s.q.QueryRow(debtSelect+` WHERE id = ?`, id)
	return scanDebt(row)
}

const debtSelect = `
	SELECT id, member_id, session_id, amount_due, amount_paid, cause, cause_detail, created_at
	FROM replenishment_debts`

func scanDebt(row *sql.Row) (*domain.ReplenishmentDebt, error) {
	var d domain.ReplenishmentDebt
	var due, paid, cause, created string
	err := row.Scan(&d.ID, &d.MemberID, &d.SessionID, &due, &paid, &cause, &d.CauseDetail, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d.AmountDue, err = parseDec(due); err != nil {
		return nil, err
	}
	if d.AmountPaid, err = parseDec(paid); err != nil {
		return nil, err
	}
	d.Cause = domain.ReplenishmentCause(cause)
	d.CreatedAt = parseTime(created)
	return &d, nil
}

// UpdateDebtPaid overwrites a debt's cumulative paid amount.
func (s *Store) UpdateDebtPaid(id string, amountPaid decimal.Decimal) error {
	_, err := s.q.Exec(`
		UPDATE replenishment_debts SET amount_paid = ? WHERE id = ?
	`, decStr(amountPaid), id)
	return err
}

// ListDebtsForMember returns a member's replenishment debts, oldest first.
func (s *Store) ListDebtsForMember(memberID string) ([]domain.ReplenishmentDebt, error) {
	rows, err := s.q.Query(debtSelect+` WHERE member_id = ? ORDER BY created_at`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []domain.ReplenishmentDebt
	for rows.Next() {
		var d domain.ReplenishmentDebt
		var due, paid, cause, created string
		if err := rows.Scan(&d.ID, &d.MemberID, &d.SessionID, &due, &paid, &cause,
			&d.CauseDetail, &created); err != nil {
			return nil, err
		}
		if d.AmountDue, err = parseDec(due); err != nil {
			return nil, err
		}
		if d.AmountPaid, err = parseDec(paid); err != nil {
			return nil, err
		}
		d.Cause = domain.ReplenishmentCause(cause)
		d.CreatedAt = parseTime(created)
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// InsertReplenishmentPayment records one installment on a debt.
func (s *Store) InsertReplenishmentPayment(p domain.ReplenishmentPayment) error {
	_, err := s.q.Exec(`
		INSERT INTO replenishment_payments (id, debt_id, session_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.DebtID, p.SessionID, decStr(p.Amount), timeStr(p.CreatedAt))
	return err
}
