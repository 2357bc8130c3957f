package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/repository"
)

type sessionRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository.
// A zero ttl keeps the session until logout.
func NewSessionRepository(client *redislib.Client, prefix string, ttl time.Duration) repository.SessionRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &sessionRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *sessionRepository) Load(ctx context.Context) (*repository.StoredSession, error) {
	values, err := r.client.MGet(ctx, r.key(repository.KeyIdentity), r.key(repository.KeyToken)).Result()
	if err != nil {
		return nil, err
	}

	rawIdentity, ok := values[0].(string)
	if !ok || rawIdentity == "" {
		return nil, domain.ErrSessionNotFound
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "stored identity is corrupt", err)
	}

	token, _ := values[1].(string)
	return &repository.StoredSession{Identity: &identity, Token: token}, nil
}

func (r *sessionRepository) Save(ctx context.Context, session repository.StoredSession) error {
	if session.Identity == nil {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session.Identity)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Set(ctx, r.key(repository.KeyIdentity), payload, r.ttl)
		if session.Token == "" {
			pipe.Del(ctx, r.key(repository.KeyToken))
		} else {
			pipe.Set(ctx, r.key(repository.KeyToken), session.Token, r.ttl)
		}
		return nil
	})
	return err
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	err := r.client.Del(ctx, r.key(repository.KeyIdentity), r.key(repository.KeyToken)).Err()
	if errors.Is(err, redislib.Nil) {
		return nil
	}
	return err
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *sessionRepository) key(name string) string {
	return r.prefix + name
}
