package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// ─── Period & Session Coordination ──────────────────────────────────────────

// OpenPeriod opens a new accounting period starting at start. Any currently
// active period is closed first so exactly one period is active. An empty
// name defaults to "Exercice <year>". The period's fund account is created
// with the period.
func (s *Service) OpenPeriod(ctx context.Context, start time.Time, name string) (p *domain.Period, err error) {
	defer func() { observe("open_period", err) }()

	period := domain.Period{
		ID:        newID(),
		StartDate: start,
		EndDate:   start.AddDate(0, s.params.PeriodMonths, 0).AddDate(0, 0, -1),
		Status:    domain.PeriodActive,
		CreatedAt: s.now().UTC(),
	}
	period.Name = name
	if period.Name == "" {
		period.Name = period.DefaultName()
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		current, err := st.ActivePeriod()
		if err != nil {
			return err
		}
		if current != nil {
			if err := st.UpdatePeriodStatus(current.ID, domain.PeriodClosed); err != nil {
				return err
			}
			if err := st.CloseActiveSessions(current.ID, ""); err != nil {
				return err
			}
		}
		if err := st.InsertPeriod(period); err != nil {
			return err
		}
		_, err = st.EnsureFund(period.ID, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"period": period.Name, "start": period.StartDate.Format("2006-01-02")}).
		Info("period opened")
	return &period, nil
}

// ActivateSession opens a session in the active period and closes any other
// active session. A positive collation amount debits the fund and distributes
// the outflow as equal-split replenishment debts, atomically with the
// activation; an insufficient fund rejects the whole activation.
func (s *Service) ActivateSession(ctx context.Context, date time.Time, name string, collation decimal.Decimal) (sess *domain.Session, err error) {
	defer func() { observe("activate_session", err) }()

	if collation.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	session := domain.Session{
		ID:              newID(),
		Date:            date,
		CollationAmount: collation,
		Status:          domain.SessionActive,
		CreatedAt:       s.now().UTC(),
	}
	session.Name = name
	if session.Name == "" {
		session.Name = session.DefaultName()
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, err := st.ActivePeriod()
		if err != nil {
			return err
		}
		if period == nil {
			return domain.ErrNoActivePeriod
		}
		session.PeriodID = period.ID

		if err := st.InsertSession(session); err != nil {
			return err
		}
		if err := st.CloseActiveSessions(period.ID, session.ID); err != nil {
			return err
		}
		if collation.IsPositive() {
			if err := s.debitFund(st, period.ID, collation, "collation "+session.Name); err != nil {
				return err
			}
			if _, _, err := s.distributeDebts(st, &session, collation, domain.CauseCollation, session.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"session": session.Name, "collation": collation.StringFixed(2)}).
		Info("session activated")
	return &session, nil
}

// ActivePeriod returns the active period, or ErrNoActivePeriod.
func (s *Service) ActivePeriod(ctx context.Context) (*domain.Period, error) {
	p, err := s.db.Read().ActivePeriod()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNoActivePeriod
	}
	return p, nil
}

// activeContext resolves the active period and session inside a transaction.
func (s *Service) activeContext(st *sqlite.Store) (*domain.Period, *domain.Session, error) {
	period, err := st.ActivePeriod()
	if err != nil {
		return nil, nil, err
	}
	if period == nil {
		return nil, nil, domain.ErrNoActivePeriod
	}
	session, err := st.ActiveSession(period.ID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, domain.ErrNoActiveSession
	}
	return period, session, nil
}

// SynchronizeStatuses is the status sweep: closes periods past their end
// date together with their sessions. Idempotent; loan lateness has its own
// sweep (ReconcileLateLoans).
func (s *Service) SynchronizeStatuses(ctx context.Context) error {
	today := s.today()
	return s.db.WithTx(ctx, func(st *sqlite.Store) error {
		closed, err := st.ClosePeriodsEndedBefore(today)
		if err != nil {
			return err
		}
		for _, id := range closed {
			if err := st.CloseActiveSessions(id, ""); err != nil {
				return err
			}
			s.log.WithField("period", id).Info("period closed by sweep")
		}
		return nil
	})
}
