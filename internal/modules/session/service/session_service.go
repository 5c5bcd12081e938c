package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/modules/session/domain"
	sessionout "medibill/internal/modules/session/port/out"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/platform/logging"
	"medibill/internal/platform/transport"
)

// SessionService owns the process-wide session state. Network calls run
// outside the lock; their results are applied only if no invalidating
// transition (login, logout, auth rejection) happened meanwhile.
type SessionService struct {
	gateway sessionout.AuthGateway
	tokens  sessionout.TokenStore
	log     hclog.Logger

	mu         sync.Mutex
	generation uint64
	current    domain.Session
}

func NewSessionService(gateway sessionout.AuthGateway, tokens sessionout.TokenStore, log hclog.Logger) *SessionService {
	return &SessionService{
		gateway: gateway,
		tokens:  tokens,
		log:     logging.OrDiscard(log).Named("session"),
		current: domain.Session{State: domain.StateUnknown},
	}
}

func (s *SessionService) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SessionService) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.Authenticated() || s.current.Token == "" {
		return "", apperrors.ErrNotAuthenticated
	}
	return s.current.Token, nil
}

// Restore validates the stored token against the profile endpoint. Any
// failure leaves the session anonymous; it is logged, never returned.
func (s *SessionService) Restore(ctx context.Context) domain.Session {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	token, err := s.tokens.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.log.Warn("load stored token", "error", err)
		}
		return s.settle(gen, domain.Session{State: domain.StateAnonymous}, false)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return s.settle(gen, domain.Session{State: domain.StateAnonymous}, true)
	}

	user, err := s.gateway.Profile(ctx, token)
	if err != nil {
		s.log.Info("stored token rejected", "kind", transport.KindOf(err), "error", err)
		return s.settle(gen, domain.Session{State: domain.StateAnonymous}, true)
	}
	return s.settle(gen, domain.Session{State: domain.StateAuthenticated, Token: token, User: user}, false)
}

// settle applies a restore outcome unless the generation moved on.
func (s *SessionService) settle(gen uint64, next domain.Session, clearToken bool) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug("discarding stale restore result", "state", next.State)
		return s.current
	}
	if clearToken {
		if err := s.tokens.Clear(context.Background()); err != nil {
			s.log.Warn("clear rejected token", "error", err)
		}
	}
	s.current = next
	return s.current
}

// Login exchanges credentials for a token. The login response names the user
// but not its id, so the session starts with UnresolvedUserID until Refresh.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := creds.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	grant, err := s.gateway.Login(ctx, creds)
	if err != nil {
		return domain.Session{}, err
	}
	token := strings.TrimSpace(grant.Token)
	if token == "" {
		return domain.Session{}, fmt.Errorf("login response carried no access token")
	}
	username := grant.Username
	if username == "" {
		username = creds.Username
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.Session{}, fmt.Errorf("login superseded by a newer session change")
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return domain.Session{}, fmt.Errorf("persist token: %w", err)
	}
	s.generation++
	s.current = domain.Session{
		State: domain.StateAuthenticated,
		Token: token,
		User:  domain.User{ID: domain.UnresolvedUserID, Username: username},
	}
	s.log.Info("logged in", "username", username)
	return s.current, nil
}

// Refresh re-reads the profile of the current session, resolving the user id
// left unresolved by Login.
func (s *SessionService) Refresh(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	gen := s.generation
	snapshot := s.current
	s.mu.Unlock()
	if !snapshot.Authenticated() {
		return snapshot, apperrors.ErrNotAuthenticated
	}

	user, err := s.gateway.Profile(ctx, snapshot.Token)
	if err != nil {
		if s.ReportAuthFailure(snapshot.Token, err) {
			return s.Current(), apperrors.ErrNotAuthenticated
		}
		return snapshot, fmt.Errorf("refresh profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.current.Token != snapshot.Token {
		return s.current, nil
	}
	s.current.User = user
	return s.current, nil
}

// Logout clears the session and its stored token before returning. Any
// request already in flight settles into the logged-out state.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.current = domain.Session{State: domain.StateAnonymous}
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.log.Info("logged out")
	return nil
}

// ReportAuthFailure invalidates the session when err is an auth rejection of
// the token that is still current. Rejections of older tokens are ignored.
func (s *SessionService) ReportAuthFailure(token string, err error) bool {
	if !transport.IsAuthRejected(err) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.Authenticated() || s.current.Token != strings.TrimSpace(token) {
		return false
	}
	s.generation++
	s.current = domain.Session{State: domain.StateAnonymous}
	if cerr := s.tokens.Clear(context.Background()); cerr != nil {
		s.log.Warn("clear rejected token", "error", cerr)
	}
	s.log.Info("session invalidated by server", "error", err)
	return true
}

func (s *SessionService) Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := reg.Validate(); err != nil {
		return domain.RegisteredUser{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.gateway.Register(ctx, reg)
}
