package in

import (
	"context"

	"healthdash/internal/modules/records/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.RecordOutput, error)
	Get(ctx context.Context, id int64) (dto.RecordOutput, error)
	Create(ctx context.Context, input dto.CreateInput) (dto.RecordOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) (dto.RecordOutput, error)
	Delete(ctx context.Context, id int64) (dto.DeleteOutput, error)
}
