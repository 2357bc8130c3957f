package bolt

import (
	"context"
	"encoding/json"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/infrastructure/kvstore"
	"github.com/fastygo/ecowork/repository"
)

type sessionRepository struct {
	store *kvstore.Store
}

// NewSessionRepository creates a BoltDB-backed session repository.
func NewSessionRepository(store *kvstore.Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Load(_ context.Context) (*repository.StoredSession, error) {
	raw, err := r.store.Get(repository.KeyIdentity)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrSessionNotFound
	}

	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "stored identity is corrupt", err)
	}

	token, err := r.store.Get(repository.KeyToken)
	if err != nil {
		return nil, err
	}
	return &repository.StoredSession{Identity: &identity, Token: string(token)}, nil
}

func (r *sessionRepository) Save(_ context.Context, session repository.StoredSession) error {
	if session.Identity == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session.Identity)
	if err != nil {
		return err
	}
	if session.Token == "" {
		if err := r.store.Delete(repository.KeyToken); err != nil {
			return err
		}
		return r.store.PutAll(map[string][]byte{repository.KeyIdentity: payload})
	}
	return r.store.PutAll(map[string][]byte{
		repository.KeyIdentity: payload,
		repository.KeyToken:    []byte(session.Token),
	})
}

func (r *sessionRepository) Clear(_ context.Context) error {
	return r.store.Delete(repository.KeyIdentity, repository.KeyToken)
}

func (r *sessionRepository) Ping(_ context.Context) error {
	return r.store.Ping()
}
