package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// ─── Assistance ─────────────────────────────────────────────────────────────

// CreateAssistanceType adds a fixed-amount assistance category.
func (s *Service) CreateAssistanceType(ctx context.Context, name string, amount decimal.Decimal) (t *domain.AssistanceType, err error) {
	defer func() { observe("create_assistance_type", err) }()

	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	typ := domain.AssistanceType{
		ID:        newID(),
		Name:      name,
		Amount:    amount,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		return st.InsertAssistanceType(typ)
	})
	if err != nil {
		return nil, err
	}
	return &typ, nil
}

// ListAssistanceTypes returns the assistance catalog.
func (s *Service) ListAssistanceTypes(ctx context.Context) ([]domain.AssistanceType, error) {
	return s.db.Read().ListAssistanceTypes()
}

// GrantAssistance opens a grant request for a member. A zero amount defaults
// to the type's fixed amount. Nothing moves until the grant is paid.
func (s *Service) GrantAssistance(ctx context.Context, memberID, typeID string, amount decimal.Decimal, justification string) (g *domain.AssistanceGrant, err error) {
	defer func() { observe("grant_assistance", err) }()

	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	grant := domain.AssistanceGrant{
		ID:            newID(),
		MemberID:      memberID,
		TypeID:        typeID,
		Amount:        amount,
		Status:        domain.GrantRequested,
		Justification: justification,
		RequestedAt:   s.now().UTC(),
		CreatedAt:     s.now().UTC(),
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		_, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		grant.SessionID = session.ID

		m, err := st.GetMember(memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMemberNotFound
		}
		typ, err := st.GetAssistanceType(typeID)
		if err != nil {
			return err
		}
		if typ == nil {
			return domain.ErrGrantNotFound
		}
		if grant.Amount.IsZero() {
			grant.Amount = typ.Amount
		}
		return st.InsertGrant(grant)
	})
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// ApproveGrant moves a requested grant to Approved.
func (s *Service) ApproveGrant(ctx context.Context, grantID string) (err error) {
	defer func() { observe("approve_grant", err) }()
	return s.transitionGrant(ctx, grantID, domain.GrantApproved)
}

// RejectGrant moves a requested grant to Rejected.
func (s *Service) RejectGrant(ctx context.Context, grantID string) (err error) {
	defer func() { observe("reject_grant", err) }()
	return s.transitionGrant(ctx, grantID, domain.GrantRejected)
}

func (s *Service) transitionGrant(ctx context.Context, grantID string, to domain.GrantStatus) error {
	return s.db.WithTx(ctx, func(st *sqlite.Store) error {
		g, err := st.GetGrant(grantID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrGrantNotFound
		}
		if g.Status != domain.GrantRequested {
			return domain.ErrGrantNotPayable
		}
		return st.UpdateGrantStatus(grantID, to, nil)
	})
}

// MarkAssistancePaid pays out a grant: the fund is debited (overdraft
// rejected) and the outflow is distributed as equal-split replenishment
// debts, atomically. Paying an already paid grant is a no-op.
func (s *Service) MarkAssistancePaid(ctx context.Context, grantID string) (g *domain.AssistanceGrant, err error) {
	defer func() { observe("mark_assistance_paid", err) }()

	var grant *domain.AssistanceGrant
	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		grant, err = st.GetGrant(grantID)
		if err != nil {
			return err
		}
		if grant == nil {
			return domain.ErrGrantNotFound
		}
		if grant.Status == domain.GrantPaid {
			return nil
		}
		if grant.Status == domain.GrantRejected {
			return domain.ErrGrantNotPayable
		}

		if err := s.debitFund(st, period.ID, grant.Amount, "assistance "+grant.ID); err != nil {
			return err
		}
		if _, _, err := s.distributeDebts(st, session, grant.Amount, domain.CauseAssistance, grant.ID); err != nil {
			return err
		}

		paidAt := s.now().UTC()
		if err := st.UpdateGrantStatus(grantID, domain.GrantPaid, &paidAt); err != nil {
			return err
		}
		grant.Status = domain.GrantPaid
		grant.PaidAt = &paidAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"grant":  grantID,
		"amount": grant.Amount.StringFixed(2),
	}).Info("assistance paid")
	return grant, nil
}
