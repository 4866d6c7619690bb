package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core/session"
)

// Store persists sessions in a Postgres `session` table; account and
// memberships are kept as jsonb documents.
type Store struct {
	db *sqlx.DB
}

var _ session.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type sessionRow struct {
	ID                 string    `db:"id"`
	Token              string    `db:"token"`
	Account            []byte    `db:"account"`
	Memberships        []byte    `db:"memberships"`
	ActiveRole         string    `db:"active_role"`
	ActiveMembershipID string    `db:"active_membership_id"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
	ExpiresAt          time.Time `db:"expires_at"`
}

func newSessionRow(sess session.Session) (sessionRow, error) {
	acct, err := json.Marshal(sess.Account)
	if err != nil {
		return sessionRow{}, errors.Wrap(err, "marshaling account")
	}
	mships, err := json.Marshal(sess.Memberships)
	if err != nil {
		return sessionRow{}, errors.Wrap(err, "marshaling memberships")
	}
	return sessionRow{
		ID:                 sess.ID,
		Token:              sess.Token,
		Account:            acct,
		Memberships:        mships,
		ActiveRole:         sess.ActiveRole,
		ActiveMembershipID: sess.ActiveMembershipID,
		CreatedAt:          sess.CreatedAt,
		UpdatedAt:          sess.UpdatedAt,
		ExpiresAt:          sess.ExpiresAt,
	}, nil
}

func (r sessionRow) toSession() (session.Session, error) {
	sess := session.Session{
		ID:                 r.ID,
		Token:              r.Token,
		ActiveRole:         r.ActiveRole,
		ActiveMembershipID: r.ActiveMembershipID,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
		ExpiresAt:          r.ExpiresAt.UTC(),
	}
	if err := json.Unmarshal(r.Account, &sess.Account); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshaling account")
	}
	if err := json.Unmarshal(r.Memberships, &sess.Memberships); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshaling memberships")
	}
	return sess, nil
}

func (s *Store) SaveSession(ctx context.Context, sess session.Session) error {
	row, err := newSessionRow(sess)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO session (id, token, account, memberships, active_role, active_membership_id, created_at, updated_at, expires_at)
		VALUES (:id, :token, :account, :memberships, :active_role, :active_membership_id, :created_at, :updated_at, :expires_at)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			account = EXCLUDED.account,
			memberships = EXCLUDED.memberships,
			active_role = EXCLUDED.active_role,
			active_membership_id = EXCLUDED.active_membership_id,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at`,
		row,
	)
	return errors.Wrap(err, "saving session")
}

func (s *Store) GetSession(ctx context.Context, id string) (session.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM session WHERE id = $1 AND expires_at > $2`, id, session.NowFunc().UTC())
	if err == sql.ErrNoRows {
		return session.Session{}, session.ErrNotFound
	} else if err != nil {
		return session.Session{}, errors.Wrap(err, "fetching session")
	}
	return row.toSession()
}

func (s *Store) DeleteSession(ctx context.Context, ids ...string) error {
	query, args, err := sqlx.In(`DELETE FROM session WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= $1`, session.NowFunc().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted sessions")
	}
	return int(n), nil
}
