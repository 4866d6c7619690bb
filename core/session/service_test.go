package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/session"
	memstore "github.com/dentacamp/portal/storage/sessionstore/inmem"
	"github.com/dentacamp/portal/tests"
)

type fakePlatform struct {
	bearer      string
	account     session.Account
	memberships []session.Membership

	magicLinkRequests []string
	consumeErr        error
	accountErr        error
}

func (f *fakePlatform) RequestMagicLink(_ context.Context, email string) error {
	f.magicLinkRequests = append(f.magicLinkRequests, email)
	return nil
}

func (f *fakePlatform) ConsumeMagicLink(_ context.Context, token string) (string, error) {
	if f.consumeErr != nil {
		return "", f.consumeErr
	}
	return f.bearer, nil
}

func (f *fakePlatform) FetchAccount(_ context.Context, bearer string) (session.Account, error) {
	if f.accountErr != nil {
		return session.Account{}, f.accountErr
	}
	return f.account, nil
}

func (f *fakePlatform) FetchMemberships(_ context.Context, bearer string) ([]session.Membership, error) {
	return f.memberships, nil
}

func membership(id, role string) session.Membership {
	return session.Membership{ID: id, Role: role, EntityType: session.EntitySchool, EntityID: "sch-1", EntityName: "Hillside Primary"}
}

func setup(t *testing.T, api *fakePlatform) (*session.Service, *memstore.Store) {
	t.Helper()
	store := memstore.NewStore()
	svc := session.NewService(store, api, testutil.NewConfig(t), testutil.NewLogger(t))
	return svc, store
}

func Test_Service_Consume(t *testing.T) {
	api := &fakePlatform{
		bearer:  "bearer-xyz",
		account: session.Account{ID: "u-1", Name: "Dr. Molar", Email: "molar@test.cd"},
		memberships: []session.Membership{
			membership("m-parent", session.RoleParent),
			membership("m-dentist", session.RoleDentist),
		},
	}
	svc, _ := setup(t, api)

	sess, err := svc.Consume(context.Background(), "magic-token")
	assert.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "bearer-xyz", sess.Token)
	assert.Equal(t, session.RoleDentist, sess.ActiveRole, "dentist outranks parent")
	assert.Equal(t, "m-dentist", sess.ActiveMembershipID)
	assert.True(t, sess.ExpiresAt.After(time.Now().UTC()))

	// session is retrievable
	got, err := svc.Get(context.Background(), sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, sess.Account, got.Account)
}

func Test_Service_Consume_platformRejectsToken(t *testing.T) {
	api := &fakePlatform{consumeErr: errors.New("invalid token")}
	svc, _ := setup(t, api)

	_, err := svc.Consume(context.Background(), "stale-token")
	assert.Error(t, err)
}

func Test_Service_Get_expired(t *testing.T) {
	svc, store := setup(t, &fakePlatform{})
	sess := testutil.CreateSession(t, store, "Pat Parent", "pat@test.cd", []string{session.RoleParent},
		time.Now().Add(-time.Minute))

	_, err := svc.Get(context.Background(), sess.ID)
	assert.Equal(t, session.ErrNotFound, err)
}

func Test_Service_Refresh_revokedBearerDestroysSession(t *testing.T) {
	api := &fakePlatform{accountErr: core.ErrUnauthenticated}
	svc, store := setup(t, api)
	sess := testutil.CreateSession(t, store, "Pat Parent", "pat@test.cd", []string{session.RoleParent})

	_, err := svc.Refresh(context.Background(), sess)
	assert.Equal(t, core.ErrUnauthenticated, err)

	_, err = store.GetSession(context.Background(), sess.ID)
	assert.Equal(t, session.ErrNotFound, err)
}

func Test_Service_Refresh_revokedRoleFallsBack(t *testing.T) {
	api := &fakePlatform{
		account:     session.Account{ID: "u-1", Name: "Jo Staff", Email: "jo@test.cd"},
		memberships: []session.Membership{membership("m-teacher", session.RoleTeacher)},
	}
	svc, store := setup(t, api)

	// the stored session still carries the dentist selection
	sess := testutil.CreateSession(t, store, "Jo Staff", "jo@test.cd", []string{session.RoleDentist, session.RoleTeacher})
	sess.ActiveRole = session.RoleDentist

	got, err := svc.Refresh(context.Background(), sess)
	assert.NoError(t, err)
	assert.Equal(t, session.RoleTeacher, got.ActiveRole, "revoked stored role must fall back to the primary role")
	assert.Equal(t, "m-teacher", got.ActiveMembershipID)
}

func Test_Service_Refresh_keepsValidSelection(t *testing.T) {
	api := &fakePlatform{
		account: session.Account{ID: "u-1", Name: "Jo Staff", Email: "jo@test.cd"},
		memberships: []session.Membership{
			membership("m-admin", session.RoleSchoolAdmin),
			membership("m-parent", session.RoleParent),
		},
	}
	svc, store := setup(t, api)

	sess := testutil.CreateSession(t, store, "Jo Staff", "jo@test.cd", []string{session.RoleSchoolAdmin, session.RoleParent})
	sess.ActiveRole = session.RoleParent
	sess.ActiveMembershipID = "m-parent"

	got, err := svc.Refresh(context.Background(), sess)
	assert.NoError(t, err)
	assert.Equal(t, session.RoleParent, got.ActiveRole, "a still-assigned stored role survives refresh")
	assert.Equal(t, "m-parent", got.ActiveMembershipID)
}

func Test_Service_SwitchRole(t *testing.T) {
	svc, store := setup(t, &fakePlatform{})
	sess := testutil.CreateSession(t, store, "Jo Staff", "jo@test.cd", []string{session.RoleSchoolAdmin, session.RoleParent})

	got, err := svc.SwitchRole(context.Background(), sess, session.RoleParent)
	assert.NoError(t, err)
	assert.Equal(t, session.RoleParent, got.ActiveRole)

	// persisted
	reloaded, err := svc.Get(context.Background(), sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, session.RoleParent, reloaded.ActiveRole)

	// a role the account does not hold is rejected
	_, err = svc.SwitchRole(context.Background(), got, session.RoleSystemAdmin)
	assert.Error(t, err)
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok)
}

func Test_Service_SwitchMembership(t *testing.T) {
	api := &fakePlatform{}
	svc, store := setup(t, api)

	lapsed := membership("m-old", session.RoleSchoolAdmin)
	lapsed.ValidTo = time.Now().UTC().AddDate(0, 0, -1)

	sess := testutil.CreateSession(t, store, "Jo Staff", "jo@test.cd", []string{session.RoleDentist})
	sess.Memberships = append(sess.Memberships, membership("m-parent", session.RoleParent), lapsed)
	assert.NoError(t, store.SaveSession(context.Background(), sess))

	got, err := svc.SwitchMembership(context.Background(), sess, "m-parent")
	assert.NoError(t, err)
	assert.Equal(t, "m-parent", got.ActiveMembershipID)
	assert.Equal(t, session.RoleParent, got.ActiveRole, "active role follows the membership")

	_, err = svc.SwitchMembership(context.Background(), got, "m-old")
	assert.Error(t, err, "lapsed memberships cannot be activated")
	_, err = svc.SwitchMembership(context.Background(), got, "m-unknown")
	assert.Error(t, err)
}

func Test_Service_Logout(t *testing.T) {
	svc, store := setup(t, &fakePlatform{})
	sess := testutil.CreateSession(t, store, "Jo Staff", "jo@test.cd", []string{session.RoleParent})

	assert.NoError(t, svc.Logout(context.Background(), sess.ID))
	_, err := svc.Get(context.Background(), sess.ID)
	assert.Equal(t, session.ErrNotFound, err)

	// logging out twice is fine
	assert.NoError(t, svc.Logout(context.Background(), sess.ID))
}

func Test_Service_PurgeExpired(t *testing.T) {
	svc, store := setup(t, &fakePlatform{})
	testutil.CreateSession(t, store, "A", "a@test.cd", []string{session.RoleParent}, time.Now().Add(-time.Hour))
	testutil.CreateSession(t, store, "B", "b@test.cd", []string{session.RoleParent}, time.Now().Add(-time.Minute))
	live := testutil.CreateSession(t, store, "C", "c@test.cd", []string{session.RoleParent})

	n, err := svc.PurgeExpired(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.Get(context.Background(), live.ID)
	assert.NoError(t, err)
}

func Test_Service_RequestLogin(t *testing.T) {
	api := &fakePlatform{}
	svc, _ := setup(t, api)

	assert.NoError(t, svc.RequestLogin(context.Background(), "pat@test.cd"))
	assert.Equal(t, []string{"pat@test.cd"}, api.magicLinkRequests)
}
