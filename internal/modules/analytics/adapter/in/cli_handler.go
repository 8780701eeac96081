package in

import (
	"context"

	analyticsdto "healthdash/internal/modules/analytics/dto"
	analyticsin "healthdash/internal/modules/analytics/port/in"
)

type CLIHandler struct {
	usecase analyticsin.Usecase
}

func NewCLIHandler(usecase analyticsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Stats(ctx context.Context) (analyticsdto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) Dashboard(ctx context.Context) (analyticsdto.DashboardOutput, error) {
	return h.usecase.Dashboard(ctx)
}
