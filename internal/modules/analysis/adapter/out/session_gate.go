package out

import (
	"context"

	sessionin "medibill/internal/modules/session/port/in"
)

type SessionGate struct {
	session sessionin.Usecase
}

func NewSessionGate(session sessionin.Usecase) *SessionGate {
	return &SessionGate{session: session}
}

func (g *SessionGate) Token(ctx context.Context) (string, error) {
	return g.session.Token(ctx)
}

func (g *SessionGate) ReportAuthFailure(ctx context.Context, token string, err error) bool {
	return g.session.ReportAuthFailure(ctx, token, err)
}
