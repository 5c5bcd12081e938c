package in

import (
	"context"

	sessiondto "medibill/internal/modules/session/dto"
	sessionin "medibill/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Register(ctx context.Context, username, email, password string) (sessiondto.RegisterOutput, error) {
	return h.usecase.Register(ctx, sessiondto.RegisterInput{Username: username, Email: email, Password: password})
}

func (h CLIHandler) Login(ctx context.Context, username, password string) (sessiondto.SessionOutput, error) {
	return h.usecase.Login(ctx, sessiondto.LoginInput{Username: username, Password: password})
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

// WhoAmI restores the stored session and refreshes the profile when the id is
// still unresolved.
func (h CLIHandler) WhoAmI(ctx context.Context) (sessiondto.SessionOutput, error) {
	current := h.usecase.Restore(ctx)
	if current.Authenticated && !current.User.Resolved {
		return h.usecase.Refresh(ctx)
	}
	return current, nil
}
