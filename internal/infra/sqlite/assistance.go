package sqlite

import (
	"database/sql"
	"time"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Assistance Operations ──────────────────────────────────────────────────

// InsertAssistanceType creates an assistance category.
func (s *Store) InsertAssistanceType(t domain.AssistanceType) error {
	_, err := s.q.Exec(`
		INSERT INTO assistance_types (id, name, amount, active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.Name, decStr(t.Amount), boolInt(t.Active), timeStr(t.CreatedAt))
	return err
}

// GetAssistanceType retrieves one category, nil when absent.
func (s *Store) GetAssistanceType(id string) (*domain.AssistanceType, error) {
	row := s.q.QueryRow(`
		SELECT id, name, amount, active, created_at
		FROM assistance_types WHERE id = ?
	`, id)
	var t domain.AssistanceType
	var amount, created string
	var active int
	err := row.Scan(&t.ID, &t.Name, &amount, &active, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t.Amount, err = parseDec(amount); err != nil {
		return nil, err
	}
	t.Active = active != 0
	t.CreatedAt = parseTime(created)
	return &t, nil
}

// ListAssistanceTypes returns every category, active first.
func (s *Store) ListAssistanceTypes() ([]domain.AssistanceType, error) {
	rows, err := s.q.Query(`
		SELECT id, name, amount, active, created_at
		FROM assistance_types ORDER BY active DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.AssistanceType
	for rows.Next() {
		var t domain.AssistanceType
		var amount, created string
		var active int
		if err := rows.Scan(&t.ID, &t.Name, &amount, &active, &created); err != nil {
			return nil, err
		}
		if t.Amount, err = parseDec(amount); err != nil {
			return nil, err
		}
		t.Active = active != 0
		t.CreatedAt = parseTime(created)
		types = append(types, t)
	}
	return types, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// InsertGrant creates an assistance grant.
func (s *Store) InsertGrant(g domain.AssistanceGrant) error {
	var paidAt any
	if g.PaidAt != nil {
		paidAt = timeStr(*g.PaidAt)
	}
	_, err := s.q.Exec(`
		INSERT INTO assistance_grants
			(id, member_id, type_id, session_id, amount, status, justification, requested_at, paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.MemberID, g.TypeID, g.SessionID, decStr(g.Amount), string(g.Status),
		g.Justification, timeStr(g.RequestedAt), paidAt, timeStr(g.CreatedAt))
	return err
}

// GetGrant retrieves one grant, nil when absent.
func (s *Store) GetGrant(id string) (*domain.AssistanceGrant, error) {
	row := s.q.QueryRow(`
		SELECT id, member_id, type_id, session_id, amount, status, justification, requested_at, paid_at, created_at
		FROM assistance_grants WHERE id = ?
	`, id)
	var g domain.AssistanceGrant
	var amount, status, requested, created string
	var paidAt sql.NullString
	err := row.Scan(&g.ID, &g.MemberID, &g.TypeID, &g.SessionID, &amount, &status,
		&g.Justification, &requested, &paidAt, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if g.Amount, err = parseDec(amount); err != nil {
		return nil, err
	}
	g.Status = domain.GrantStatus(status)
	g.RequestedAt = parseTime(requested)
	if paidAt.Valid {
		t := parseTime(paidAt.String)
		g.PaidAt = &t
	}
	g.CreatedAt = parseTime(created)
	return &g, nil
}

// UpdateGrantStatus advances a grant's lifecycle; paidAt is set only when the
// grant transitions into PAID.
func (s *Store) UpdateGrantStatus(id string, status domain.GrantStatus, paidAt *time.Time) error {
	if paidAt != nil {
		_, err := s.q.Exec(`
			UPDATE assistance_grants SET status = ?, paid_at = ? WHERE id = ?
		`, string(status), timeStr(*paidAt), id)
		return err
	}
	_, err := s.q.Exec(`
		UPDATE assistance_grants SET status = ? WHERE id = ?
	`, string(status), id)
	return err
}
