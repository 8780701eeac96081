package in

import (
	"context"

	recordsdto "healthdash/internal/modules/records/dto"
	recordsin "healthdash/internal/modules/records/port/in"
)

type CLIHandler struct {
	usecase recordsin.Usecase
}

func NewCLIHandler(usecase recordsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]recordsdto.RecordOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id int64) (recordsdto.RecordOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) Create(ctx context.Context, input recordsdto.CreateInput) (recordsdto.RecordOutput, error) {
	return h.usecase.Create(ctx, input)
}

func (h CLIHandler) Update(ctx context.Context, input recordsdto.UpdateInput) (recordsdto.RecordOutput, error) {
	return h.usecase.Update(ctx, input)
}

func (h CLIHandler) Delete(ctx context.Context, id int64) (recordsdto.DeleteOutput, error) {
	return h.usecase.Delete(ctx, id)
}
