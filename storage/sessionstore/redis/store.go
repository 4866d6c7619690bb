package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/session"
)

const keyPrefix = "portal:session:"

// sessionRecord re-attaches the bearer token, which Session keeps out of its
// JSON representation.
type sessionRecord struct {
	session.Session
	Token string `json:"token"`
}

// Store keeps sessions in Redis, one JSON value per session with a TTL
// matching the session expiry.
type Store struct {
	client *redis.Client
}

var _ session.Store = (*Store)(nil)

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func NewClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

func (s *Store) SaveSession(ctx context.Context, sess session.Session) error {
	data, err := json.Marshal(sessionRecord{Session: sess, Token: sess.Token})
	if err != nil {
		return errors.Wrap(err, "marshaling session")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err = s.client.Set(ctx, keyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "storing session")
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (session.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return session.Session{}, session.ErrNotFound
	} else if err != nil {
		return session.Session{}, errors.Wrap(err, "fetching session")
	}

	var rec sessionRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshaling session")
	}
	sess := rec.Session
	sess.Token = rec.Token
	if sess.Expired(session.NowFunc().UTC()) {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}

// DeleteExpiredSessions is satisfied by the per-key TTL; it only reports how
// many live keys remain past their recorded expiry (normally none).
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	var n int
	now := session.NowFunc().UTC()

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var rec sessionRecord
		if err = json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if rec.Expired(now) {
			if err = s.client.Del(ctx, key).Err(); err == nil {
				n++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return n, errors.Wrap(err, "scanning sessions")
	}
	return n, nil
}
