package in

import (
	"context"

	"healthdash/internal/modules/analytics/dto"
)

type Usecase interface {
	Stats(ctx context.Context) (dto.StatsOutput, error)
	Dashboard(ctx context.Context) (dto.DashboardOutput, error)
}
