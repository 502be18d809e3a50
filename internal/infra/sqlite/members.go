package sqlite

import (
	"database/sql"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Member Operations ──────────────────────────────────────────────────────

// InsertMember creates a member row.
func (s *Store) InsertMember(m domain.Member) error {
	_, err := s.q.Exec(`
		INSERT INTO members (id, member_no, full_name, status, registration_date, period_id, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.MemberNo, m.FullName, string(m.Status), dateStr(m.RegistrationDate),
		m.PeriodID, m.SessionID, timeStr(m.CreatedAt))
	return err
}

// GetMember retrieves one member, nil when absent.
func (s *Store) GetMember(id string) (*domain.Member, error) {
	row := s.q.QueryRow(`
		SELECT id, member_no, full_name, status, registration_date, period_id, session_id, created_at
		FROM members WHERE id = ?
	`, id)
	var m domain.Member
	var status, regDate, created string
	err := row.Scan(&m.ID, &m.MemberNo, &m.FullName, &status, &regDate, &m.PeriodID, &m.SessionID, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Status = domain.MemberStatus(status)
	m.RegistrationDate = parseDate(regDate)
	m.CreatedAt = parseTime(created)
	return &m, nil
}

// CountMembers returns the total member count, used to assign member numbers.
func (s *Store) CountMembers() (int, error) {
	var n int
	err := s.q.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&n)
	return n, err
}

// UpdateMemberStatus sets a member's standing.
func (s *Store) UpdateMemberStatus(id string, status domain.MemberStatus) error {
	_, err := s.q.Exec(`UPDATE members SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ListMembers returns every member ordered by member number.
func (s *Store) ListMembers() ([]domain.Member, error) {
	return s.queryMembers(`
		SELECT id, member_no, full_name, status, registration_date, period_id, session_id, created_at
		FROM members ORDER BY member_no
	`)
}

// ListMembersInGoodStanding returns the members currently in good standing,
// the population that shares interest redistribution and replenishment debts.
func (s *Store) ListMembersInGoodStanding() ([]domain.Member, error) {
	return s.queryMembers(`
		SELECT id, member_no, full_name, status, registration_date, period_id, session_id, created_at
		FROM members WHERE status = 'IN_GOOD_STANDING' ORDER BY member_no
	`)
}

func (s *Store) queryMembers(query string, args ...any) ([]domain.Member, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var status, regDate, created string
		if err := rows.Scan(&m.ID, &m.MemberNo, &m.FullName, &status, &regDate,
			&m.PeriodID, &m.SessionID, &created); err != nil {
			return nil, err
		}
		m.Status = domain.MemberStatus(status)
		m.RegistrationDate = parseDate(regDate)
		m.CreatedAt = parseTime(created)
		members = append(members, m)
	}
	return members, rows.Err()
}
