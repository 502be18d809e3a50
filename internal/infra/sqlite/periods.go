package sqlite

import (
	"database/sql"
	"time"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Period Operations ──────────────────────────────────────────────────────

// InsertPeriod creates a period row.
func (s *Store) InsertPeriod(p domain.Period) error {
	_, err := s.q.Exec(`
		INSERT INTO periods (id, name, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, dateStr(p.StartDate), dateStr(p.EndDate), string(p.Status), timeStr(p.CreatedAt))
	return err
}

// GetPeriod retrieves one period, nil when absent.
func (s *Store) GetPeriod(id string) (*domain.Period, error) {
	row := s.q.QueryRow(`
		SELECT id, name, start_date, end_date, status, created_at
		FROM periods WHERE id = ?
	`, id)
	return scanPeriod(row)
}

// ActivePeriod returns the single active period, nil when none exists.
func (s *Store) ActivePeriod() (*domain.Period, error) {
	row := s.q.QueryRow(`
		SELECT id, name, start_date, end_date, status, created_at
		FROM periods WHERE status = 'ACTIVE' ORDER BY start_date DESC LIMIT 1
	`)
	return scanPeriod(row)
}

func scanPeriod(row *sql.Row) (*domain.Period, error) {
	var p domain.Period
	var status, start, end, created string
	err := row.Scan(&p.ID, &p.Name, &start, &end, &status, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.StartDate = parseDate(start)
	p.EndDate = parseDate(end)
	p.Status = domain.PeriodStatus(status)
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// UpdatePeriodStatus sets a period's status.
func (s *Store) UpdatePeriodStatus(id string, status domain.PeriodStatus) error {
	_, err := s.q.Exec(`UPDATE periods SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ClosePeriodsEndedBefore closes active periods whose end date has passed.
// Returns the ids of the periods closed.
func (s *Store) ClosePeriodsEndedBefore(today time.Time) ([]string, error) {
	rows, err := s.q.Query(`
		SELECT id FROM periods WHERE status = 'ACTIVE' AND end_date < ?
	`, dateStr(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := s.q.Exec(`UPDATE periods SET status = 'CLOSED' WHERE id = ?`, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// ─── Session Operations ─────────────────────────────────────────────────────

// InsertSession creates a session row.
func (s *Store) InsertSession(sess domain.Session) error {
	_, err := s.q.Exec(`
		INSERT INTO sessions (id, period_id, name, session_date, collation_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.PeriodID, sess.Name, dateStr(sess.Date), decStr(sess.CollationAmount),
		string(sess.Status), timeStr(sess.CreatedAt))
	return err
}

// GetSession retrieves one session, nil when absent.
func (s *Store) GetSession(id string) (*domain.Session, error) {
	row := s.q.QueryRow(`
		SELECT id, period_id, name, session_date, collation_amount, status, created_at
		FROM sessions WHERE id = ?
	`, id)
	return scanSession(row)
}

// ActiveSession returns a period's active session, nil when none exists.
func (s *Store) ActiveSession(periodID string) (*domain.Session, error) {
	row := s.q.QueryRow(`
		SELECT id, period_id, name, session_date, collation_amount, status, created_at
		FROM sessions WHERE period_id = ? AND status = 'ACTIVE' LIMIT 1
	`, periodID)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var sess domain.Session
	var date, collation, status, created string
	err := row.Scan(&sess.ID, &sess.PeriodID, &sess.Name, &date, &collation, &status, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.Date = parseDate(date)
	sess.CollationAmount, err = parseDec(collation)
	if err != nil {
		return nil, err
	}
	sess.Status = domain.SessionStatus(status)
	sess.CreatedAt = parseTime(created)
	return &sess, nil
}

// CloseActiveSessions closes every active session of a period except one.
func (s *Store) CloseActiveSessions(periodID, exceptID string) error {
	_, err := s.q.Exec(`
		UPDATE sessions SET status = 'CLOSED'
		WHERE period_id = ? AND status = 'ACTIVE' AND id != ?
	`, periodID, exceptID)
	return err
}

// UpdateSessionStatus sets a session's status.
func (s *Store) UpdateSessionStatus(id string, status domain.SessionStatus) error {
	_, err := s.q.Exec(`UPDATE sessions SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// CountDuesSessions counts the sessions a member owes solidarity for: every
// active or closed session of a period that started on or after the
// registration date. Sessions of the period the member joined mid-way are
// exempt.
func (s *Store) CountDuesSessions(registrationDate time.Time) (int, error) {
	var n int
	err := s.q.QueryRow(`
		SELECT COUNT(*) FROM sessions s
		JOIN periods p ON p.id = s.period_id
		WHERE s.status IN ('ACTIVE', 'CLOSED') AND p.start_date >= ?
	`, dateStr(registrationDate)).Scan(&n)
	return n, err
}
