package in

import (
	"context"

	sessiondto "healthdash/internal/modules/session/dto"
	sessionin "healthdash/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Register(ctx context.Context, username, password string) (sessiondto.AccountOutput, error) {
	return h.usecase.Register(ctx, sessiondto.CredentialsInput{Username: username, Password: password})
}

func (h CLIHandler) Login(ctx context.Context, username, password string) (sessiondto.SessionOutput, error) {
	return h.usecase.Login(ctx, sessiondto.CredentialsInput{Username: username, Password: password})
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) Current(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}
