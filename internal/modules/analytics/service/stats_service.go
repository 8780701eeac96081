package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"healthdash/internal/modules/analytics/domain"
	analyticsout "healthdash/internal/modules/analytics/port/out"
	apperrors "healthdash/internal/platform/errors"
)

type StatsService struct {
	gateway analyticsout.StatsGateway
	logger  *zap.Logger
}

func NewStatsService(gateway analyticsout.StatsGateway, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{gateway: gateway, logger: logger}
}

func (s *StatsService) Stats(ctx context.Context, username, token string) (domain.Stats, error) {
	if username == "" {
		return domain.Stats{}, fmt.Errorf("%w: username is required", apperrors.ErrInvalidInput)
	}
	return s.gateway.Stats(ctx, username, token)
}

// ForRecords fetches stats only when recordCount is positive. A 404 means the
// service has not aggregated the user's records yet and is reported as
// pending instead of failing.
func (s *StatsService) ForRecords(ctx context.Context, username, token string, recordCount int) (stats *domain.Stats, pending bool, err error) {
	if recordCount == 0 {
		return nil, false, nil
	}
	got, err := s.Stats(ctx, username, token)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Debug("stats not ready", zap.String("username", username), zap.Int("records", recordCount))
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &got, false, nil
}
