package out

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"healthdash/internal/modules/session/domain"
	sessionout "healthdash/internal/modules/session/port/out"
	"healthdash/internal/platform/transport"
)

type HTTPAuthGateway struct {
	client *transport.Client
}

func NewHTTPAuthGateway(client *transport.Client) sessionout.AuthGateway {
	return &HTTPAuthGateway{client: client}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (g *HTTPAuthGateway) Register(ctx context.Context, username, password string) (domain.Account, error) {
	body, err := json.Marshal(credentials{Username: username, Password: password})
	if err != nil {
		return domain.Account{}, fmt.Errorf("encode register body: %w", err)
	}
	return transport.Send[domain.Account](ctx, g.client, "/auth/register", transport.Options{
		Method: http.MethodPost,
		Body:   body,
	})
}

// Login posts an OAuth2 password form, which is what the service expects.
func (g *HTTPAuthGateway) Login(ctx context.Context, username, password string) (domain.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	return transport.Send[domain.Token](ctx, g.client, "/auth/login", transport.Options{
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": transport.ContentTypeForm},
		Body:    []byte(form.Encode()),
	})
}
