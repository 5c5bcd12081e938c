package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"medibill/internal/modules/session/domain"
	"medibill/internal/modules/session/service"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/platform/transport"
)

type memTokenStore struct {
	mu      sync.Mutex
	token   string
	present bool
	clears  int
}

func (s *memTokenStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return "", apperrors.ErrNotFound
	}
	return s.token, nil
}

func (s *memTokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.present = token, true
	return nil
}

func (s *memTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.present = "", false
	s.clears++
	return nil
}

func (s *memTokenStore) stored() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.present
}

type fakeGateway struct {
	profile  func(ctx context.Context, token string) (domain.User, error)
	login    func(ctx context.Context, creds domain.Credentials) (domain.LoginGrant, error)
	register func(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error)
}

func (g fakeGateway) Profile(ctx context.Context, token string) (domain.User, error) {
	return g.profile(ctx, token)
}

func (g fakeGateway) Login(ctx context.Context, creds domain.Credentials) (domain.LoginGrant, error) {
	return g.login(ctx, creds)
}

func (g fakeGateway) Register(ctx context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
	return g.register(ctx, reg)
}

var errRejected = &transport.Error{Kind: transport.KindAuthRejected, Status: 401, Message: "Token has expired"}

func profileFor(tokens map[string]domain.User) func(context.Context, string) (domain.User, error) {
	return func(_ context.Context, token string) (domain.User, error) {
		user, ok := tokens[token]
		if !ok {
			return domain.User{}, errRejected
		}
		return user, nil
	}
}

func TestRestoreWithoutTokenIsAnonymous(t *testing.T) {
	t.Parallel()
	svc := service.NewSessionService(fakeGateway{profile: func(context.Context, string) (domain.User, error) {
		t.Fatalf("profile must not be requested without a token")
		return domain.User{}, nil
	}}, &memTokenStore{}, nil)

	if got := svc.Current().State; got != domain.StateUnknown {
		t.Fatalf("initial state = %s, want unknown", got)
	}
	if got := svc.Restore(context.Background()); got.State != domain.StateAnonymous {
		t.Fatalf("state = %s, want anonymous", got.State)
	}
}

func TestRestoreAuthenticatesValidToken(t *testing.T) {
	t.Parallel()
	tokens := &memTokenStore{token: "tok-1", present: true}
	alice := domain.User{ID: 7, Username: "alice", Email: "alice@example.com"}
	svc := service.NewSessionService(fakeGateway{profile: profileFor(map[string]domain.User{"tok-1": alice})}, tokens, nil)

	got := svc.Restore(context.Background())
	if !got.Authenticated() || got.User != alice || got.Token != "tok-1" {
		t.Fatalf("unexpected session: %+v", got)
	}
	token, err := svc.Token()
	if err != nil || token != "tok-1" {
		t.Fatalf("token = %q, %v", token, err)
	}
}

func TestRestoreFailureClearsToken(t *testing.T) {
	t.Parallel()
	cases := map[string]error{
		"rejected":    errRejected,
		"unreachable": &transport.Error{Kind: transport.KindNetworkUnreachable, Message: "down"},
		"malformed":   &transport.Error{Kind: transport.KindMalformedResponse, Status: 200, Message: "html"},
	}
	for name, failure := range cases {
		failure := failure
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tokens := &memTokenStore{token: "tok-1", present: true}
			svc := service.NewSessionService(fakeGateway{profile: func(context.Context, string) (domain.User, error) {
				return domain.User{}, failure
			}}, tokens, nil)

			got := svc.Restore(context.Background())
			if got.State != domain.StateAnonymous {
				t.Fatalf("state = %s, want anonymous", got.State)
			}
			if _, present := tokens.stored(); present {
				t.Fatalf("expected stored token to be cleared")
			}
			if _, err := svc.Token(); !errors.Is(err, apperrors.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	}
}

func TestLogoutDuringPendingRestoreWins(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	entered := make(chan struct{})
	release := make(chan struct{})
	tokens := &memTokenStore{token: "tok-1", present: true}
	svc := service.NewSessionService(fakeGateway{profile: func(context.Context, string) (domain.User, error) {
		close(entered)
		<-release
		return domain.User{ID: 7, Username: "alice"}, nil
	}}, tokens, nil)

	var wg sync.WaitGroup
	var restored domain.Session
	wg.Add(1)
	go func() {
		defer wg.Done()
		restored = svc.Restore(context.Background())
	}()

	<-entered
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := svc.Current().State; got != domain.StateAnonymous {
		t.Fatalf("state right after logout = %s, want anonymous", got)
	}
	close(release)
	wg.Wait()

	if restored.Authenticated() || svc.Current().Authenticated() {
		t.Fatalf("stale restore revived the session: %+v", svc.Current())
	}
	if _, present := tokens.stored(); present {
		t.Fatalf("token should stay cleared after logout")
	}
}

func TestStaleRestoreFailureKeepsNewerLogin(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	entered := make(chan struct{})
	release := make(chan struct{})
	tokens := &memTokenStore{token: "old", present: true}
	svc := service.NewSessionService(fakeGateway{
		profile: func(_ context.Context, token string) (domain.User, error) {
			if token == "old" {
				close(entered)
				<-release
			}
			return domain.User{}, errRejected
		},
		login: func(context.Context, domain.Credentials) (domain.LoginGrant, error) {
			return domain.LoginGrant{Token: "new", Username: "bob"}, nil
		},
	}, tokens, nil)

	done := make(chan domain.Session)
	go func() { done <- svc.Restore(context.Background()) }()

	<-entered
	if _, err := svc.Login(context.Background(), domain.Credentials{Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	close(release)
	<-done

	if token, present := tokens.stored(); !present || token != "new" {
		t.Fatalf("stored token = %q (present=%v), want new", token, present)
	}
	if got := svc.Current(); !got.Authenticated() || got.Token != "new" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestLoginUsesPlaceholderIDUntilRefresh(t *testing.T) {
	t.Parallel()
	tokens := &memTokenStore{}
	bob := domain.User{ID: 42, Username: "bob"}
	svc := service.NewSessionService(fakeGateway{
		login: func(_ context.Context, creds domain.Credentials) (domain.LoginGrant, error) {
			if creds.Username != "bob" || creds.Password != "secret" {
				t.Fatalf("unexpected credentials: %+v", creds)
			}
			return domain.LoginGrant{Token: "tok-bob", Username: "bob"}, nil
		},
		profile: profileFor(map[string]domain.User{"tok-bob": bob}),
	}, tokens, nil)

	got, err := svc.Login(context.Background(), domain.Credentials{Username: " bob ", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.User.ID != domain.UnresolvedUserID || got.User.Resolved() || got.User.Username != "bob" {
		t.Fatalf("expected placeholder user, got %+v", got.User)
	}
	if token, _ := tokens.stored(); token != "tok-bob" {
		t.Fatalf("stored token = %q", token)
	}

	refreshed, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.User != bob {
		t.Fatalf("refreshed user = %+v, want %+v", refreshed.User, bob)
	}
}

func TestLoginFailurePersistsNothing(t *testing.T) {
	t.Parallel()
	tokens := &memTokenStore{}
	svc := service.NewSessionService(fakeGateway{login: func(context.Context, domain.Credentials) (domain.LoginGrant, error) {
		return domain.LoginGrant{}, errRejected
	}}, tokens, nil)

	if _, err := svc.Login(context.Background(), domain.Credentials{Username: "bob", Password: "bad"}); !transport.IsAuthRejected(err) {
		t.Fatalf("expected auth rejection, got %v", err)
	}
	if _, present := tokens.stored(); present {
		t.Fatalf("failed login must not store a token")
	}
	if _, err := svc.Login(context.Background(), domain.Credentials{Username: "", Password: "x"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReportAuthFailureOnlyForCurrentToken(t *testing.T) {
	t.Parallel()
	tokens := &memTokenStore{token: "tok-1", present: true}
	svc := service.NewSessionService(fakeGateway{profile: profileFor(map[string]domain.User{"tok-1": {ID: 1, Username: "a"}})}, tokens, nil)
	svc.Restore(context.Background())

	if svc.ReportAuthFailure("tok-0", errRejected) {
		t.Fatalf("rejection of an older token must be ignored")
	}
	if svc.ReportAuthFailure("tok-1", &transport.Error{Kind: transport.KindServerError, Status: 500}) {
		t.Fatalf("non-auth failures must not invalidate")
	}
	if !svc.Current().Authenticated() {
		t.Fatalf("session should still be authenticated")
	}
	if !svc.ReportAuthFailure("tok-1", errRejected) {
		t.Fatalf("rejection of the current token must invalidate")
	}
	if svc.Current().State != domain.StateAnonymous {
		t.Fatalf("state = %s, want anonymous", svc.Current().State)
	}
	if _, present := tokens.stored(); present {
		t.Fatalf("token should be cleared")
	}
}

func TestRefreshRejectedInvalidates(t *testing.T) {
	t.Parallel()
	tokens := &memTokenStore{}
	svc := service.NewSessionService(fakeGateway{
		login: func(context.Context, domain.Credentials) (domain.LoginGrant, error) {
			return domain.LoginGrant{Token: "tok", Username: "bob"}, nil
		},
		profile: func(context.Context, string) (domain.User, error) { return domain.User{}, errRejected },
	}, tokens, nil)
	if _, err := svc.Login(context.Background(), domain.Credentials{Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	got, err := svc.Refresh(context.Background())
	if !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if got.Authenticated() {
		t.Fatalf("session should be anonymous after rejection")
	}
}

func TestRegisterValidatesAndForwards(t *testing.T) {
	t.Parallel()
	var seen domain.Registration
	svc := service.NewSessionService(fakeGateway{register: func(_ context.Context, reg domain.Registration) (domain.RegisteredUser, error) {
		seen = reg
		return domain.RegisteredUser{ID: 9, Username: reg.Username, Message: "User created"}, nil
	}}, &memTokenStore{}, nil)

	got, err := svc.Register(context.Background(), domain.Registration{Username: " carol ", Email: "carol@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got.ID != 9 || seen.Username != "carol" {
		t.Fatalf("unexpected result %+v (sent %+v)", got, seen)
	}
	if _, err := svc.Register(context.Background(), domain.Registration{Username: "carol", Email: "nope", Password: "pw"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if svc.Current().State != domain.StateUnknown {
		t.Fatalf("register must not touch the session")
	}
}
