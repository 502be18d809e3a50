package sqlite

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// ─── Loan Operations ────────────────────────────────────────────────────────

// InsertLoan creates a loan row.
func (s *Store) InsertLoan(l domain.Loan) error {
	_, err := s.q.Exec(`
		INSERT INTO loans (id, member_id, session_id, principal, rate, total_due, repaid, issued_at, due_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.MemberID, l.SessionID, decStr(l.Principal), l.Rate.String(), decStr(l.TotalDue),
		decStr(l.Repaid), dateStr(l.IssuedAt), dateStr(l.DueDate), string(l.Status), timeStr(l.CreatedAt))
	return err
}

// GetLoan retrieves one loan, nil when absent.
func (s *Store) GetLoan(id string) (*domain.Loan, error) {
	row := s.q.QueryRow(loanSelect+` WHERE id = ?`, id)
	return scanLoan(row)
}

// OpenLoanForMember returns the member's active or late loan, nil when none.
// At most one open loan per member exists.
func (s *Store) OpenLoanForMember(memberID string) (*domain.Loan, error) {
	row := s.q.QueryRow(loanSelect+`
		WHERE member_id = ? AND status IN ('ACTIVE', 'LATE') LIMIT 1
	`, memberID)
	return scanLoan(row)
}

const loanSelect = `
	SELECT id, member_id, session_id, principal, rate, total_due, repaid, issued_at, due_date, status, created_at
	FROM loans`

func scanLoan(row *sql.Row) (*domain.Loan, error) {
	var l domain.Loan
	var principal, rate, totalDue, repaid, issued, due, status, created string
	err := row.Scan(&l.ID, &l.MemberID, &l.SessionID, &principal, &rate, &totalDue,
		&repaid, &issued, &due, &status, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fillLoan(&l, principal, rate, totalDue, repaid, issued, due, status, created)
}

func fillLoan(l *domain.Loan, principal, rate, totalDue, repaid, issued, due, status, created string) (*domain.Loan, error) {
	var err error
	if l.Principal, err = parseDec(principal); err != nil {
		return nil, err
	}
	if l.Rate, err = parseDec(rate); err != nil {
		return nil, err
	}
	if l.TotalDue, err = parseDec(totalDue); err != nil {
		return nil, err
	}
	if l.Repaid, err = parseDec(repaid); err != nil {
		return nil, err
	}
	l.IssuedAt = parseDate(issued)
	l.DueDate = parseDate(due)
	l.Status = domain.LoanStatus(status)
	l.CreatedAt = parseTime(created)
	return l, nil
}

// UpdateLoanProgress records an applied repayment on the loan row.
func (s *Store) UpdateLoanProgress(id string, repaid decimal.Decimal, status domain.LoanStatus) error {
	_, err := s.q.Exec(`
		UPDATE loans SET repaid = ?, status = ? WHERE id = ?
	`, decStr(repaid), string(status), id)
	return err
}

// UpdateLoanStatus sets a loan's status.
func (s *Store) UpdateLoanStatus(id string, status domain.LoanStatus) error {
	_, err := s.q.Exec(`UPDATE loans SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ListOpenLoans returns every active or late loan.
func (s *Store) ListOpenLoans() ([]domain.Loan, error) {
	return s.queryLoans(loanSelect + ` WHERE status IN ('ACTIVE', 'LATE') ORDER BY issued_at`)
}

// ListLoans returns every loan, newest first.
func (s *Store) ListLoans() ([]domain.Loan, error) {
	return s.queryLoans(loanSelect + ` ORDER BY issued_at DESC`)
}

func (s *Store) queryLoans(query string, args ...any) ([]domain.Loan, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var principal, rate, totalDue, repaid, issued, due, status, created string
		if err := rows.Scan(&l.ID, &l.MemberID, &l.SessionID, &principal, &rate, &totalDue,
			&repaid, &issued, &due, &status, &created); err != nil {
			return nil, err
		}
		if _, err := fillLoan(&l, principal, rate, totalDue, repaid, issued, due, status, created); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// ─── Repayment Operations ───────────────────────────────────────────────────

// InsertRepayment records one repayment installment.
func (s *Store) InsertRepayment(r domain.Repayment) error {
	_, err := s.q.Exec(`
		INSERT INTO repayments (id, loan_id, session_id, amount, capital, interest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.LoanID, r.SessionID, decStr(r.Amount), decStr(r.Capital), decStr(r.Interest),
		timeStr(r.CreatedAt))
	return err
}

// SumRepaidCapital totals the capital portions of a loan's prior repayments.
func (s *Store) SumRepaidCapital(loanID string) (decimal.Decimal, error) {
	return s.sumAmounts(`SELECT capital FROM repayments WHERE loan_id = ?`, loanID)
}

// ListRepayments returns a loan's repayments in application order.
func (s *Store) ListRepayments(loanID string) ([]domain.Repayment, error) {
	rows, err := s.q.Query(`
		SELECT id, loan_id, session_id, amount, capital, interest, created_at
		FROM repayments WHERE loan_id = ? ORDER BY created_at
	`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repayments []domain.Repayment
	for rows.Next() {
		var r domain.Repayment
		var amount, capital, interest, created string
		if err := rows.Scan(&r.ID, &r.LoanID, &r.SessionID, &amount, &capital, &interest, &created); err != nil {
			return nil, err
		}
		if r.Amount, err = parseDec(amount); err != nil {
			return nil, err
		}
		if r.Capital, err = parseDec(capital); err != nil {
			return nil, err
		}
		if r.Interest, err = parseDec(interest); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(created)
		repayments = append(repayments, r)
	}
	return repayments, rows.Err()
}
