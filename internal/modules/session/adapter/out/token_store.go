package out

import (
	"context"

	"medibill/internal/platform/localstore"
)

// LocalTokenStore keeps the bearer token under localstore.KeyToken.
type LocalTokenStore struct {
	store localstore.Store
}

func NewLocalTokenStore(store localstore.Store) *LocalTokenStore {
	return &LocalTokenStore{store: store}
}

func (s *LocalTokenStore) Load(ctx context.Context) (string, error) {
	return s.store.Get(ctx, localstore.KeyToken)
}

func (s *LocalTokenStore) Save(ctx context.Context, token string) error {
	return s.store.Set(ctx, localstore.KeyToken, token)
}

func (s *LocalTokenStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, localstore.KeyToken)
}
