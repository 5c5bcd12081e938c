package usecase_test

import (
	"context"
	"errors"
	"testing"

	"medibill/internal/modules/session/domain"
	sessiondto "medibill/internal/modules/session/dto"
	"medibill/internal/modules/session/service"
	"medibill/internal/modules/session/usecase"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/platform/transport"
)

type memTokens struct{ token string }

func (m *memTokens) Load(context.Context) (string, error) {
	if m.token == "" {
		return "", apperrors.ErrNotFound
	}
	return m.token, nil
}
func (m *memTokens) Save(_ context.Context, token string) error { m.token = token; return nil }
func (m *memTokens) Clear(context.Context) error                { m.token = ""; return nil }

type gateway struct {
	profileErr error
}

func (g gateway) Profile(context.Context, string) (domain.User, error) {
	if g.profileErr != nil {
		return domain.User{}, g.profileErr
	}
	return domain.User{ID: 42, Username: "bob"}, nil
}

func (g gateway) Login(context.Context, domain.Credentials) (domain.LoginGrant, error) {
	return domain.LoginGrant{Token: "tok", Username: "bob"}, nil
}

func (g gateway) Register(context.Context, domain.Registration) (domain.RegisteredUser, error) {
	return domain.RegisteredUser{}, nil
}

func TestLoginResolvesUserID(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewSessionService(gateway{}, &memTokens{}, nil), nil)

	out, err := uc.Login(context.Background(), sessiondto.LoginInput{Username: "bob", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !out.Authenticated || out.User.ID != 42 || !out.User.Resolved {
		t.Fatalf("unexpected output: %+v", out)
	}
	if token, err := uc.Token(context.Background()); err != nil || token != "tok" {
		t.Fatalf("token = %q, %v", token, err)
	}
}

func TestLoginKeepsPlaceholderWhenProfileUnavailable(t *testing.T) {
	t.Parallel()
	down := &transport.Error{Kind: transport.KindNetworkUnreachable, Message: "down"}
	uc := usecase.NewInteractor(service.NewSessionService(gateway{profileErr: down}, &memTokens{}, nil), nil)

	out, err := uc.Login(context.Background(), sessiondto.LoginInput{Username: "bob", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !out.Authenticated || out.User.Resolved || out.User.ID != domain.UnresolvedUserID {
		t.Fatalf("expected placeholder session, got %+v", out)
	}
}

func TestLogoutThenTokenFails(t *testing.T) {
	t.Parallel()
	tokens := &memTokens{}
	uc := usecase.NewInteractor(service.NewSessionService(gateway{}, tokens, nil), nil)
	if _, err := uc.Login(context.Background(), sessiondto.LoginInput{Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := uc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.Token(context.Background()); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if tokens.token != "" {
		t.Fatalf("token should be cleared")
	}
	if got := uc.Current(context.Background()); got.State != sessiondto.StateAnonymous {
		t.Fatalf("state = %s", got.State)
	}
}
