package usecase

import (
	"context"

	"healthdash/internal/modules/analytics/domain"
	analyticsdto "healthdash/internal/modules/analytics/dto"
	analyticsin "healthdash/internal/modules/analytics/port/in"
	"healthdash/internal/modules/analytics/service"
	recordsin "healthdash/internal/modules/records/port/in"
	sessionin "healthdash/internal/modules/session/port/in"
)

type Interactor struct {
	svc      *service.StatsService
	records  recordsin.Usecase
	sessions sessionin.Usecase
}

func NewInteractor(svc *service.StatsService, records recordsin.Usecase, sessions sessionin.Usecase) analyticsin.Usecase {
	return &Interactor{svc: svc, records: records, sessions: sessions}
}

func (i *Interactor) Stats(ctx context.Context) (analyticsdto.StatsOutput, error) {
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return analyticsdto.StatsOutput{}, err
	}
	stats, err := i.svc.Stats(ctx, current.Username, current.Token)
	if err != nil {
		return analyticsdto.StatsOutput{}, i.sessions.HandleAuthFailure(ctx, err)
	}
	return toOutput(stats), nil
}

func (i *Interactor) Dashboard(ctx context.Context) (analyticsdto.DashboardOutput, error) {
	records, err := i.records.List(ctx)
	if err != nil {
		return analyticsdto.DashboardOutput{}, err
	}
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return analyticsdto.DashboardOutput{}, err
	}
	out := analyticsdto.DashboardOutput{Username: current.Username, Records: records}
	stats, pending, err := i.svc.ForRecords(ctx, current.Username, current.Token, len(records))
	if err != nil {
		return analyticsdto.DashboardOutput{}, i.sessions.HandleAuthFailure(ctx, err)
	}
	out.StatsPending = pending
	if stats != nil {
		s := toOutput(*stats)
		out.Stats = &s
	}
	return out, nil
}

func toOutput(stats domain.Stats) analyticsdto.StatsOutput {
	return analyticsdto.StatsOutput{
		Username:     stats.Username,
		TotalSteps:   stats.TotalSteps,
		RecordCount:  stats.RecordCount,
		AverageSteps: stats.AverageSteps,
	}
}
