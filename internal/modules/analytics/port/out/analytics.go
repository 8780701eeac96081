package out

import (
	"context"

	"healthdash/internal/modules/analytics/domain"
)

type StatsGateway interface {
	Stats(ctx context.Context, username, token string) (domain.Stats, error)
}
