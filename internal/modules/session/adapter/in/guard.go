package in

import (
	"context"

	sessiondto "medibill/internal/modules/session/dto"
	sessionin "medibill/internal/modules/session/port/in"
	apperrors "medibill/internal/platform/errors"
)

// Guard gates protected surfaces on an authenticated session, restoring the
// stored one on first use.
type Guard struct {
	usecase sessionin.Usecase
}

func NewGuard(usecase sessionin.Usecase) Guard {
	return Guard{usecase: usecase}
}

// Require returns the logged-in user or apperrors.ErrNotAuthenticated.
func (g Guard) Require(ctx context.Context) (sessiondto.UserOutput, error) {
	current := g.usecase.Current(ctx)
	if current.State == sessiondto.StateUnknown {
		current = g.usecase.Restore(ctx)
	}
	if !current.Authenticated {
		return sessiondto.UserOutput{}, apperrors.ErrNotAuthenticated
	}
	return current.User, nil
}

// Pending reports whether the session has not been resolved yet, which a
// view shows as a loading indicator.
func (g Guard) Pending(ctx context.Context) bool {
	return g.usecase.Current(ctx).State == sessiondto.StateUnknown
}

// Check reports the session as it stands without restoring it:
// apperrors.ErrSessionUnresolved while unknown, ErrNotAuthenticated when
// anonymous.
func (g Guard) Check(ctx context.Context) (sessiondto.UserOutput, error) {
	current := g.usecase.Current(ctx)
	switch {
	case current.State == sessiondto.StateUnknown:
		return sessiondto.UserOutput{}, apperrors.ErrSessionUnresolved
	case !current.Authenticated:
		return sessiondto.UserOutput{}, apperrors.ErrNotAuthenticated
	}
	return current.User, nil
}
