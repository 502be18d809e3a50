package sqlite

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Contribution Payments ──────────────────────────────────────────────────

// InsertRegistrationPayment records an installment of the registration fee.
func (s *Store) InsertRegistrationPayment(id, memberID, sessionID string, amount decimal.Decimal, now time.Time) error {
	_, err := s.q.Exec(`
		INSERT INTO registration_payments (id, member_id, session_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, memberID, sessionID, decStr(amount), timeStr(now))
	return err
}

// SumRegistrationPayments totals a member's registration installments.
func (s *Store) SumRegistrationPayments(memberID string) (decimal.Decimal, error) {
	return s.sumAmounts(`SELECT amount FROM registration_payments WHERE member_id = ?`, memberID)
}

// InsertSolidarityPayment records a solidarity due payment.
func (s *Store) InsertSolidarityPayment(id, memberID, sessionID string, amount decimal.Decimal, now time.Time) error {
	_, err := s.q.Exec(`
		INSERT INTO solidarity_payments (id, member_id, session_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, memberID, sessionID, decStr(amount), timeStr(now))
	return err
}

// SumSolidarityPayments totals a member's solidarity payments.
func (s *Store) SumSolidarityPayments(memberID string) (decimal.Decimal, error) {
	return s.sumAmounts(`SELECT amount FROM solidarity_payments WHERE member_id = ?`, memberID)
}

// sumAmounts sums a single TEXT amount column in Go, keeping decimal values
// out of SQLite float arithmetic.
func (s *Store) sumAmounts(query string, args ...any) (decimal.Decimal, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		d, err := parseDec(amount)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}
