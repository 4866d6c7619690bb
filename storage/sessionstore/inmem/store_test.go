package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentacamp/portal/core/session"
	memstore "github.com/dentacamp/portal/storage/sessionstore/inmem"
)

func newSession(id string, expiresAt time.Time) session.Session {
	return session.Session{
		ID:        id,
		Account:   session.Account{ID: "acc-1", Email: "jane@test.dentacamp.io"},
		ExpiresAt: expiresAt,
	}
}

func Test_Store_roundTrip(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()
	sess := newSession("sess-1", time.Now().Add(time.Hour))

	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Account.Email, got.Account.Email)

	require.NoError(t, store.DeleteSession(ctx, "sess-1"))
	_, err = store.GetSession(ctx, "sess-1")
	assert.Equal(t, session.ErrNotFound, err)
}

func Test_Store_expiredReadsAsMissing(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, newSession("sess-old", time.Now().Add(-time.Minute))))

	_, err := store.GetSession(ctx, "sess-old")
	assert.Equal(t, session.ErrNotFound, err)
}

func Test_Store_DeleteExpiredSessions(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, newSession("sess-live", time.Now().Add(time.Hour))))
	require.NoError(t, store.SaveSession(ctx, newSession("sess-old-1", time.Now().Add(-time.Minute))))
	require.NoError(t, store.SaveSession(ctx, newSession("sess-old-2", time.Now().Add(-time.Hour))))

	n, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.GetSession(ctx, "sess-live")
	assert.NoError(t, err)
}
