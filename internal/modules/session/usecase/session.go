package usecase

import (
	"context"
	"fmt"
	"strings"

	"healthdash/internal/modules/session/domain"
	sessiondto "healthdash/internal/modules/session/dto"
	sessionin "healthdash/internal/modules/session/port/in"
	sessionout "healthdash/internal/modules/session/port/out"
	"healthdash/internal/modules/session/service"
	apperrors "healthdash/internal/platform/errors"
	"healthdash/internal/platform/transport"
)

type Interactor struct {
	store   *service.Store
	gateway sessionout.AuthGateway
}

func NewInteractor(store *service.Store, gateway sessionout.AuthGateway) sessionin.Usecase {
	return &Interactor{store: store, gateway: gateway}
}

func (i *Interactor) Register(ctx context.Context, input sessiondto.CredentialsInput) (sessiondto.AccountOutput, error) {
	if err := validateCredentials(input); err != nil {
		return sessiondto.AccountOutput{}, err
	}
	account, err := i.gateway.Register(ctx, strings.TrimSpace(input.Username), input.Password)
	if err != nil {
		return sessiondto.AccountOutput{}, err
	}
	return sessiondto.AccountOutput{ID: account.ID, Username: account.Username}, nil
}

func (i *Interactor) Login(ctx context.Context, input sessiondto.CredentialsInput) (sessiondto.SessionOutput, error) {
	if err := validateCredentials(input); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	username := strings.TrimSpace(input.Username)
	token, err := i.gateway.Login(ctx, username, input.Password)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if token.AccessToken == "" {
		return sessiondto.SessionOutput{}, fmt.Errorf("login response carried no access token")
	}
	if err := i.store.Login(ctx, username, token.AccessToken); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(domain.Session{Username: username, Token: token.AccessToken}), nil
}

func (i *Interactor) Logout(ctx context.Context) error {
	return i.store.Logout(ctx)
}

func (i *Interactor) Current(ctx context.Context) (sessiondto.SessionOutput, error) {
	current, ok := i.store.Current()
	if !ok {
		return sessiondto.SessionOutput{}, apperrors.ErrNotAuthenticated
	}
	if i.store.Expired() {
		if err := i.store.Logout(ctx); err != nil {
			return sessiondto.SessionOutput{}, err
		}
		return sessiondto.SessionOutput{}, apperrors.ErrSessionExpired
	}
	return toOutput(current), nil
}

func (i *Interactor) HandleAuthFailure(ctx context.Context, err error) error {
	reqErr, ok := transport.AsRequestError(err)
	if !ok || !reqErr.Unauthorized() {
		return err
	}
	if _, signedIn := i.store.Current(); !signedIn {
		return err
	}
	if logoutErr := i.store.Logout(ctx); logoutErr != nil {
		return fmt.Errorf("%w: %w (%v)", apperrors.ErrSessionExpired, err, logoutErr)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, err)
}

func validateCredentials(input sessiondto.CredentialsInput) error {
	if strings.TrimSpace(input.Username) == "" {
		return fmt.Errorf("%w: username is required", apperrors.ErrInvalidInput)
	}
	if input.Password == "" {
		return fmt.Errorf("%w: password is required", apperrors.ErrInvalidInput)
	}
	return nil
}

func toOutput(s domain.Session) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{Username: s.Username, Token: s.Token, State: domain.Authenticated.String()}
	if exp, ok := s.ExpiresAt(); ok {
		out.ExpiresAt = exp
	}
	return out
}
