package out

import (
	"context"

	"medibill/internal/modules/session/domain"
)

// TokenStore persists the bearer token. Load reports apperrors.ErrNotFound
// when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type AuthGateway interface {
	Profile(ctx context.Context, token string) (domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (domain.LoginGrant, error)
	Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error)
}
