package usecase

import (
	"context"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/modules/session/domain"
	sessiondto "medibill/internal/modules/session/dto"
	sessionin "medibill/internal/modules/session/port/in"
	"medibill/internal/modules/session/service"
	"medibill/internal/platform/logging"
)

type Interactor struct {
	svc *service.SessionService
	log hclog.Logger
}

func NewInteractor(svc *service.SessionService, log hclog.Logger) sessionin.Usecase {
	return &Interactor{svc: svc, log: logging.OrDiscard(log).Named("session")}
}

func (i *Interactor) Restore(ctx context.Context) sessiondto.SessionOutput {
	return toOutput(i.svc.Restore(ctx))
}

func (i *Interactor) Current(_ context.Context) sessiondto.SessionOutput {
	return toOutput(i.svc.Current())
}

func (i *Interactor) Register(ctx context.Context, input sessiondto.RegisterInput) (sessiondto.RegisterOutput, error) {
	registered, err := i.svc.Register(ctx, domain.Registration{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return sessiondto.RegisterOutput{}, err
	}
	return sessiondto.RegisterOutput{UserID: registered.ID, Username: registered.Username, Message: registered.Message}, nil
}

// Login authenticates and then tries to resolve the user's id. A failed
// resolution keeps the session with a placeholder id.
func (i *Interactor) Login(ctx context.Context, input sessiondto.LoginInput) (sessiondto.SessionOutput, error) {
	session, err := i.svc.Login(ctx, domain.Credentials{Username: input.Username, Password: input.Password})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	refreshed, err := i.svc.Refresh(ctx)
	if err != nil {
		i.log.Warn("profile lookup after login failed", "error", err)
		if !refreshed.Authenticated() {
			return toOutput(refreshed), err
		}
		return toOutput(session), nil
	}
	return toOutput(refreshed), nil
}

func (i *Interactor) Refresh(ctx context.Context) (sessiondto.SessionOutput, error) {
	session, err := i.svc.Refresh(ctx)
	return toOutput(session), err
}

func (i *Interactor) Logout(ctx context.Context) error {
	return i.svc.Logout(ctx)
}

func (i *Interactor) Token(_ context.Context) (string, error) {
	return i.svc.Token()
}

func (i *Interactor) ReportAuthFailure(_ context.Context, token string, err error) bool {
	return i.svc.ReportAuthFailure(token, err)
}

func toOutput(s domain.Session) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{State: s.State.String(), Authenticated: s.Authenticated()}
	if s.Authenticated() {
		out.User = sessiondto.UserOutput{
			ID:       s.User.ID,
			Username: s.User.Username,
			Email:    s.User.Email,
			Resolved: s.User.Resolved(),
		}
	}
	return out
}
