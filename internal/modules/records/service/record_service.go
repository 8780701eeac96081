package service

import (
	"context"
	"fmt"

	"healthdash/internal/modules/records/domain"
	recordsout "healthdash/internal/modules/records/port/out"
	apperrors "healthdash/internal/platform/errors"
)

type RecordService struct {
	gateway recordsout.RecordGateway
}

func NewRecordService(gateway recordsout.RecordGateway) *RecordService {
	return &RecordService{gateway: gateway}
}

func (s *RecordService) List(ctx context.Context, username, token string) ([]domain.HealthRecord, error) {
	records, err := s.gateway.List(ctx, username, token)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(records)
	return records, nil
}

// Get refuses records owned by someone else; the service does not scope
// lookups by id.
func (s *RecordService) Get(ctx context.Context, username string, id int64, token string) (domain.HealthRecord, error) {
	if id <= 0 {
		return domain.HealthRecord{}, fmt.Errorf("%w: record id must be positive", apperrors.ErrInvalidInput)
	}
	record, err := s.gateway.Get(ctx, id, token)
	if err != nil {
		return domain.HealthRecord{}, err
	}
	if record.Username != username {
		return domain.HealthRecord{}, fmt.Errorf("record %d: %w", id, apperrors.ErrNotFound)
	}
	return record, nil
}

func (s *RecordService) Create(ctx context.Context, draft domain.Draft, token string) (domain.HealthRecord, error) {
	if err := draft.Validate(); err != nil {
		return domain.HealthRecord{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.gateway.Create(ctx, draft, token)
}

func (s *RecordService) Update(ctx context.Context, id int64, patch domain.Patch, token string) (domain.HealthRecord, error) {
	if id <= 0 {
		return domain.HealthRecord{}, fmt.Errorf("%w: record id must be positive", apperrors.ErrInvalidInput)
	}
	if err := patch.Validate(); err != nil {
		return domain.HealthRecord{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.gateway.Update(ctx, id, patch, token)
}

func (s *RecordService) Delete(ctx context.Context, id int64, token string) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: record id must be positive", apperrors.ErrInvalidInput)
	}
	return s.gateway.Delete(ctx, id, token)
}
