package out

import (
	"context"

	"healthdash/internal/modules/records/domain"
)

// RecordGateway talks to the health-records resource. Every call carries the
// caller's bearer token; errors are returned as the transport produced them.
type RecordGateway interface {
	List(ctx context.Context, username, token string) ([]domain.HealthRecord, error)
	Get(ctx context.Context, id int64, token string) (domain.HealthRecord, error)
	Create(ctx context.Context, draft domain.Draft, token string) (domain.HealthRecord, error)
	Update(ctx context.Context, id int64, patch domain.Patch, token string) (domain.HealthRecord, error)
	Delete(ctx context.Context, id int64, token string) (string, error)
}
