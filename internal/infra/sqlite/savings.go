package sqlite

import (
	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Savings Ledger Operations ──────────────────────────────────────────────

// InsertSavingsEntry appends one savings ledger row.
func (s *Store) InsertSavingsEntry(e domain.SavingsEntry) error {
	_, err := s.q.Exec(`
		INSERT INTO savings_entries (id, member_id, session_id, entry_type, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.MemberID, e.SessionID, string(e.Type), decStr(e.Amount), timeStr(e.CreatedAt))
	return err
}

// SavingsBalance derives a member's balance as the sum of ledger entries.
func (s *Store) SavingsBalance(memberID string) (decimal.Decimal, error) {
	return s.sumAmounts(`SELECT amount FROM savings_entries WHERE member_id = ?`, memberID)
}

// TotalSavings sums the savings ledgers of every non-suspended member.
func (s *Store) TotalSavings() (decimal.Decimal, error) {
	return s.sumAmounts(`
		SELECT e.amount FROM savings_entries e
		JOIN members m ON m.id = e.member_id
		WHERE m.status != 'SUSPENDED'
	`)
}

// ListSavingsEntries returns a member's ledger, newest first.
func (s *Store) ListSavingsEntries(memberID string, limit int) ([]domain.SavingsEntry, error) {
	rows, err := s.q.Query(`
		SELECT id, member_id, session_id, entry_type, amount, created_at
		FROM savings_entries WHERE member_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.SavingsEntry
	for rows.Next() {
		var e domain.SavingsEntry
		var typ, amount, created string
		if err := rows.Scan(&e.ID, &e.MemberID, &e.SessionID, &typ, &amount, &created); err != nil {
			return nil, err
		}
		e.Type = domain.SavingsEntryType(typ)
		e.Amount, err = parseDec(amount)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
