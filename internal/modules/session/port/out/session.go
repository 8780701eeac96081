package out

import (
	"context"

	"healthdash/internal/modules/session/domain"
)

// KeyValueStore is durable string-keyed storage. Get reports found=false for a
// missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type AuthGateway interface {
	Register(ctx context.Context, username, password string) (domain.Account, error)
	Login(ctx context.Context, username, password string) (domain.Token, error)
}
