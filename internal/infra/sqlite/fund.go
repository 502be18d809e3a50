package sqlite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Fund Account Operations ────────────────────────────────────────────────

// EnsureFund returns the period's fund account, creating it at zero if absent.
func (s *Store) EnsureFund(periodID string, now time.Time) (*domain.FundAccount, error) {
	f, err := s.GetFund(periodID)
	if err != nil || f != nil {
		return f, err
	}
	f = &domain.FundAccount{
		ID:        uuid.NewString(),
		PeriodID:  periodID,
		Balance:   decimal.Zero,
		CreatedAt: now,
	}
	_, err = s.q.Exec(`
		INSERT INTO fund_accounts (id, period_id, balance, created_at)
		VALUES (?, ?, ?, ?)
	`, f.ID, f.PeriodID, decStr(f.Balance), timeStr(f.CreatedAt))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetFund looks up a period's fund account; nil when none exists yet.
func (s *Store) GetFund(periodID string) (*domain.FundAccount, error) {
	row := s.q.QueryRow(`
		SELECT id, period_id, balance, created_at
		FROM fund_accounts WHERE period_id = ?
	`, periodID)
	var f domain.FundAccount
	var balance, created string
	err := row.Scan(&f.ID, &f.PeriodID, &balance, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Balance, err = parseDec(balance)
	if err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(created)
	return &f, nil
}

// UpdateFundBalance overwrites the cached fund balance.
func (s *Store) UpdateFundBalance(fundID string, balance decimal.Decimal) error {
	_, err := s.q.Exec(`UPDATE fund_accounts SET balance = ? WHERE id = ?`, decStr(balance), fundID)
	return err
}

// InsertMovement records one fund movement.
func (s *Store) InsertMovement(m domain.FundMovement) error {
	_, err := s.q.Exec(`
		INSERT INTO fund_movements (id, fund_id, type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.FundID, string(m.Type), decStr(m.Amount), m.Description, timeStr(m.CreatedAt))
	return err
}

// SumMovements recomputes the fund balance from its movement log. Amounts are
// summed in Go so the TEXT columns never pass through SQLite float arithmetic.
func (s *Store) SumMovements(fundID string) (decimal.Decimal, error) {
	rows, err := s.q.Query(`SELECT type, amount FROM fund_movements WHERE fund_id = ?`, fundID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var typ, amount string
		if err := rows.Scan(&typ, &amount); err != nil {
			return decimal.Zero, err
		}
		d, err := parseDec(amount)
		if err != nil {
			return decimal.Zero, err
		}
		m := domain.FundMovement{Type: domain.MovementType(typ), Amount: d}
		total = total.Add(m.Signed())
	}
	return total, rows.Err()
}

// ListMovements returns a fund's most recent movements, newest first.
func (s *Store) ListMovements(fundID string, limit int) ([]domain.FundMovement, error) {
	rows, err := s.q.Query(`
		SELECT id, fund_id, type, amount, description, created_at
		FROM fund_movements WHERE fund_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, fundID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []domain.FundMovement
	for rows.Next() {
		var m domain.FundMovement
		var typ, amount, created string
		if err := rows.Scan(&m.ID, &m.FundID, &typ, &amount, &m.Description, &created); err != nil {
			return nil, err
		}
		m.Type = domain.MovementType(typ)
		m.Amount, err = parseDec(amount)
		if err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(created)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
