package in

import (
	"context"

	"medibill/internal/modules/session/dto"
)

type Usecase interface {
	Restore(ctx context.Context) dto.SessionOutput
	Current(ctx context.Context) dto.SessionOutput
	Register(ctx context.Context, input dto.RegisterInput) (dto.RegisterOutput, error)
	Login(ctx context.Context, input dto.LoginInput) (dto.SessionOutput, error)
	Refresh(ctx context.Context) (dto.SessionOutput, error)
	Logout(ctx context.Context) error
	// Token returns the bearer token of the current session.
	Token(ctx context.Context) (string, error)
	// ReportAuthFailure invalidates the session when err rejects token.
	ReportAuthFailure(ctx context.Context, token string, err error) bool
}
