package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/session"
)

// NewConfig returns a config suitable for tests; nothing is read from the
// environment so tests stay hermetic.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	return &core.Config{
		AppName:          "DentaCamp Portal",
		Env:              "TEST",
		Build:            "test",
		Debug:            false,
		TestMode:         true,
		SecretKey:        []byte("test-secret-key"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "DentaCamp Portal", Address: "noreply@test.localhost"},
		Server: core.ServerConfig{
			Host: "localhost",
			Addr: ":0",
		},
		Platform: core.PlatformConfig{
			BaseURL: "http://platform.test",
			Timeout: 5 * time.Second,
		},
		Session: core.SessionConfig{
			CookieName:      "dcp_session",
			ExpirationDelta: time.Hour,
			Store:           "memory",
		},
		Cache: core.CacheConfig{TTL: time.Minute},
		Upload: core.UploadConfig{
			MaxRows:  100,
			BatchTTL: time.Minute,
		},
	}
}

// testLogger funnels service logs into the test output.
type testLogger struct {
	t *testing.T
}

var _ core.Logger = (*testLogger)(nil)

func NewLogger(t *testing.T) core.Logger { return &testLogger{t: t} }

func (l *testLogger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	if len(args) > 0 {
		l.t.Logf("%s: %s %v", level, msg, args)
	} else {
		l.t.Logf("%s: %s", level, msg)
	}
}

func (l *testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

// CreateSession persists a ready-made session for the given roles, one open
// membership per role.
func CreateSession(t *testing.T, store session.Store, name, email string, roles []string, expiresAt ...time.Time) session.Session {
	t.Helper()

	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	if len(expiresAt) > 0 {
		exp = expiresAt[0].UTC()
	}

	mships := make([]session.Membership, 0, len(roles))
	for _, role := range roles {
		mships = append(mships, session.Membership{
			ID:         uuid.NewString(),
			Role:       role,
			EntityType: session.EntitySchool,
			EntityID:   uuid.NewString(),
			EntityName: "Test School",
		})
	}

	sess := session.Session{
		ID:          uuid.NewString(),
		Token:       "platform-bearer-" + uuid.NewString(),
		Account:     session.Account{ID: uuid.NewString(), Name: name, Email: email},
		Memberships: mships,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   exp,
	}
	sess.ActiveRole = session.ResolvePrimaryRole(sess.Roles(now))
	for _, m := range mships {
		if m.Role == sess.ActiveRole {
			sess.ActiveMembershipID = m.ID
			break
		}
	}

	if err := store.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}
