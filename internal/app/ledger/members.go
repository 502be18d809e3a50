package ledger

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/domain"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// ─── Member Registry ────────────────────────────────────────────────────────

// CreateMember registers a new member in the active session. The member
// starts not in good standing: the registration fee is unpaid.
func (s *Service) CreateMember(ctx context.Context, fullName string) (m *domain.Member, err error) {
	defer func() { observe("create_member", err) }()

	member := domain.Member{
		ID:               newID(),
		FullName:         fullName,
		Status:           domain.MemberNotInGoodStanding,
		RegistrationDate: s.today(),
		CreatedAt:        s.now().UTC(),
	}

	err = s.db.WithTx(ctx, func(st *sqlite.Store) error {
		period, session, err := s.activeContext(st)
		if err != nil {
			return err
		}
		member.PeriodID = period.ID
		member.SessionID = session.ID

		n, err := st.CountMembers()
		if err != nil {
			return err
		}
		member.MemberNo = domain.NextMemberNo(n + 1)
		return st.InsertMember(member)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"member": member.MemberNo, "name": member.FullName}).
		Info("member registered")
	return &member, nil
}

// SuspendMember suspends a member. Suspension sticks until lifted explicitly;
// the eligibility projection never overrides it.
func (s *Service) SuspendMember(ctx context.Context, memberID string) (err error) {
	defer func() { observe("suspend_member", err) }()

	return s.db.WithTx(ctx, func(st *sqlite.Store) error {
		m, err := st.GetMember(memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMemberNotFound
		}
		return st.UpdateMemberStatus(memberID, domain.MemberSuspended)
	})
}

// ListMembers returns the full registry.
func (s *Service) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return s.db.Read().ListMembers()
}
