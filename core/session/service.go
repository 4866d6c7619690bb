package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

var (
	// errors
	ErrNotFound      = errors.New("session not found")
	ErrRoleNotHeld   = errors.New("role is not assigned to this account")
	ErrBadMembership = errors.New("membership does not belong to this account or is no longer valid")

	NowFunc = time.Now // mockable
)

type (
	// Platform is the slice of the platform API the session service needs.
	Platform interface {
		RequestMagicLink(ctx context.Context, email string) error
		// ConsumeMagicLink exchanges the emailed token for a bearer token.
		ConsumeMagicLink(ctx context.Context, token string) (string, error)
		FetchAccount(ctx context.Context, bearer string) (Account, error)
		FetchMemberships(ctx context.Context, bearer string) ([]Membership, error)
	}

	// Store persists sessions. Reads of expired sessions must behave as not-found.
	Store interface {
		SaveSession(ctx context.Context, sess Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, ids ...string) error
		DeleteExpiredSessions(ctx context.Context) (int, error)
	}

	Service struct {
		store  Store
		api    Platform
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(store Store, api Platform, conf *core.Config, logger core.Logger) *Service {
	return &Service{store: store, api: api, conf: conf, logger: logger}
}

// RequestLogin asks the platform API to email a magic link. The platform does
// not reveal whether the address exists; neither does the portal.
func (svc *Service) RequestLogin(ctx context.Context, email string) error {
	return pkgerrors.Wrap(svc.api.RequestMagicLink(ctx, email), "requesting magic link")
}

// Consume exchanges a magic-link token for a new portal session: it fetches
// the account and its memberships, resolves the primary role and persists the
// session.
func (svc *Service) Consume(ctx context.Context, token string) (Session, error) {
	bearer, err := svc.api.ConsumeMagicLink(ctx, token)
	if err != nil {
		return Session{}, err
	}

	acct, err := svc.api.FetchAccount(ctx, bearer)
	if err != nil {
		return Session{}, pkgerrors.Wrap(err, "fetching account")
	}
	mships, err := svc.api.FetchMemberships(ctx, bearer)
	if err != nil {
		return Session{}, pkgerrors.Wrap(err, "fetching memberships")
	}

	now := NowFunc().UTC()
	sess := Session{
		ID:          uuid.NewString(),
		Token:       bearer,
		Account:     acct,
		Memberships: mships,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(svc.conf.Session.ExpirationDelta),
	}
	sess.ActiveRole = ResolvePrimaryRole(sess.Roles(now))
	sess.ActiveMembershipID = firstMembershipID(sess.Memberships, sess.ActiveRole, now)

	if err = svc.store.SaveSession(ctx, sess); err != nil {
		return Session{}, pkgerrors.Wrap(err, "saving session")
	}
	return sess, nil
}

// Get loads a session by ID. Expired sessions are deleted and reported as not found.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	sess, err := svc.store.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(NowFunc().UTC()) {
		if dErr := svc.store.DeleteSession(ctx, id); dErr != nil {
			svc.logger.Warn("deleting expired session", dErr)
		}
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Refresh re-fetches the account and memberships from the platform API and
// re-validates the stored role selection: a stored role no longer assigned
// falls back to the primary role.
func (svc *Service) Refresh(ctx context.Context, sess Session) (Session, error) {
	acct, err := svc.api.FetchAccount(ctx, sess.Token)
	if err != nil {
		return Session{}, svc.refreshErr(ctx, sess.ID, err, "fetching account")
	}
	mships, err := svc.api.FetchMemberships(ctx, sess.Token)
	if err != nil {
		return Session{}, svc.refreshErr(ctx, sess.ID, err, "fetching memberships")
	}

	now := NowFunc().UTC()
	sess.Account = acct
	sess.Memberships = mships
	sess.ActiveRole = ResolveActiveRole(sess.ActiveRole, sess.Roles(now))
	if m, ok := sess.ActiveMembership(); !ok || !m.ValidAt(now) || m.Role != sess.ActiveRole {
		sess.ActiveMembershipID = firstMembershipID(sess.Memberships, sess.ActiveRole, now)
	}
	sess.UpdatedAt = now

	if err = svc.store.SaveSession(ctx, sess); err != nil {
		return Session{}, pkgerrors.Wrap(err, "saving session")
	}
	return sess, nil
}

// refreshErr destroys the session when the platform API no longer honours
// its bearer token.
func (svc *Service) refreshErr(ctx context.Context, id string, err error, msg string) error {
	if pkgerrors.Cause(err) == core.ErrUnauthenticated {
		if dErr := svc.store.DeleteSession(ctx, id); dErr != nil {
			svc.logger.Warn("deleting revoked session", dErr)
		}
		return core.ErrUnauthenticated
	}
	return pkgerrors.Wrap(err, msg)
}

// SwitchRole changes the active role; the role must be held through a
// currently valid membership.
func (svc *Service) SwitchRole(ctx context.Context, sess Session, role string) (Session, error) {
	now := NowFunc().UTC()
	if !sess.HasRole(role, now) {
		return Session{}, core.NewValidationError(ErrRoleNotHeld, core.FieldError{Field: "role", Error: ErrRoleNotHeld.Error()})
	}

	sess.ActiveRole = role
	if m, ok := sess.ActiveMembership(); !ok || m.Role != role || !m.ValidAt(now) {
		sess.ActiveMembershipID = firstMembershipID(sess.Memberships, role, now)
	}
	sess.UpdatedAt = now

	if err := svc.store.SaveSession(ctx, sess); err != nil {
		return Session{}, pkgerrors.Wrap(err, "saving session")
	}
	return sess, nil
}

// SwitchMembership changes the active membership; the membership must belong
// to the account and be currently valid. The active role follows it.
func (svc *Service) SwitchMembership(ctx context.Context, sess Session, membershipID string) (Session, error) {
	now := NowFunc().UTC()
	m, ok := sess.MembershipByID(membershipID)
	if !ok || !m.ValidAt(now) {
		return Session{}, core.NewValidationError(ErrBadMembership, core.FieldError{Field: "membership_id", Error: ErrBadMembership.Error()})
	}

	sess.ActiveMembershipID = m.ID
	sess.ActiveRole = m.Role
	sess.UpdatedAt = now

	if err := svc.store.SaveSession(ctx, sess); err != nil {
		return Session{}, pkgerrors.Wrap(err, "saving session")
	}
	return sess, nil
}

func (svc *Service) Logout(ctx context.Context, id string) error {
	if err := svc.store.DeleteSession(ctx, id); err != nil && err != ErrNotFound {
		return pkgerrors.Wrap(err, "deleting session")
	}
	return nil
}

// PurgeExpired removes expired sessions from the store.
func (svc *Service) PurgeExpired(ctx context.Context) (int, error) {
	return svc.store.DeleteExpiredSessions(ctx)
}

func firstMembershipID(mships []Membership, role string, at time.Time) string {
	for _, m := range mships {
		if m.Role == role && m.ValidAt(at) {
			return m.ID
		}
	}
	return ""
}
