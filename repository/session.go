package repository

import (
	"context"

	"github.com/fastygo/ecowork/domain"
)

// Fixed storage keys for the persisted session.
const (
	KeyIdentity = "ecowork_user"
	KeyToken    = "auth_token"
)

// StoredSession is what survives a restart: the identity and its auth token.
type StoredSession struct {
	Identity *domain.Identity
	Token    string
}

// SessionRepository persists the current session in durable storage.
// Load returns domain.ErrSessionNotFound when nothing is stored.
type SessionRepository interface {
	Load(ctx context.Context) (*StoredSession, error)
	Save(ctx context.Context, session StoredSession) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
