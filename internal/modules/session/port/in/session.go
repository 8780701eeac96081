package in

import (
	"context"

	"healthdash/internal/modules/session/dto"
)

type Usecase interface {
	Register(ctx context.Context, input dto.CredentialsInput) (dto.AccountOutput, error)
	Login(ctx context.Context, input dto.CredentialsInput) (dto.SessionOutput, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (dto.SessionOutput, error)
	// HandleAuthFailure signs the user out when err is a rejected token and
	// returns err marked as an expired session. Other errors pass through.
	HandleAuthFailure(ctx context.Context, err error) error
}
