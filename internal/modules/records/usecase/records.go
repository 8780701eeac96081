package usecase

import (
	"context"

	"healthdash/internal/modules/records/domain"
	recordsdto "healthdash/internal/modules/records/dto"
	recordsin "healthdash/internal/modules/records/port/in"
	"healthdash/internal/modules/records/service"
	sessionin "healthdash/internal/modules/session/port/in"
)

type Interactor struct {
	svc      *service.RecordService
	sessions sessionin.Usecase
}

func NewInteractor(svc *service.RecordService, sessions sessionin.Usecase) recordsin.Usecase {
	return &Interactor{svc: svc, sessions: sessions}
}

func (i *Interactor) List(ctx context.Context) ([]recordsdto.RecordOutput, error) {
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	records, err := i.svc.List(ctx, current.Username, current.Token)
	if err != nil {
		return nil, i.sessions.HandleAuthFailure(ctx, err)
	}
	out := make([]recordsdto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toOutput(record))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id int64) (recordsdto.RecordOutput, error) {
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return recordsdto.RecordOutput{}, err
	}
	record, err := i.svc.Get(ctx, current.Username, id, current.Token)
	if err != nil {
		return recordsdto.RecordOutput{}, i.sessions.HandleAuthFailure(ctx, err)
	}
	return toOutput(record), nil
}

func (i *Interactor) Create(ctx context.Context, input recordsdto.CreateInput) (recordsdto.RecordOutput, error) {
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return recordsdto.RecordOutput{}, err
	}
	record, err := i.svc.Create(ctx, domain.Draft{
		Username:        current.Username,
		Steps:           input.Steps,
		SleepHours:      input.SleepHours,
		Weight:          input.Weight,
		HeartRate:       input.HeartRate,
		BloodPressure:   input.BloodPressure,
		BloodSugar:      input.BloodSugar,
		BodyTemperature: input.BodyTemperature,
	}, current.Token)
	if err != nil {
		return recordsdto.RecordOutput{}, i.sessions.HandleAuthFailure(ctx, err)
	}
	return toOutput(record), nil
}

func (i *Interactor) Update(ctx context.Context, input recordsdto.UpdateInput) (recordsdto.RecordOutput, error) {
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return recordsdto.RecordOutput{}, err
	}
	record, err := i.svc.Update(ctx, input.ID, domain.Patch{
		Steps:           input.Steps,
		SleepHours:      input.SleepHours,
		Weight:          input.Weight,
		HeartRate:       input.HeartRate,
		BloodPressure:   input.BloodPressure,
		BloodSugar:      input.BloodSugar,
		BodyTemperature: input.BodyTemperature,
	}, current.Token)
	if err != nil {
		return recordsdto.RecordOutput{}, i.sessions.HandleAuthFailure(ctx, err)
	}
	return toOutput(record), nil
}

func (i *Interactor) Delete(ctx context.Context, id int64) (recordsdto.DeleteOutput, error) {
	current, err := i.sessions.Current(ctx)
	if err != nil {
		return recordsdto.DeleteOutput{}, err
	}
	message, err := i.svc.Delete(ctx, id, current.Token)
	if err != nil {
		return recordsdto.DeleteOutput{}, i.sessions.HandleAuthFailure(ctx, err)
	}
	return recordsdto.DeleteOutput{ID: id, Message: message}, nil
}

func toOutput(record domain.HealthRecord) recordsdto.RecordOutput {
	recordedAt, _ := record.Time()
	return recordsdto.RecordOutput{
		ID:              record.ID,
		Username:        record.Username,
		Steps:           record.Steps,
		SleepHours:      record.SleepHours,
		Weight:          record.Weight,
		Timestamp:       record.Timestamp,
		RecordedAt:      recordedAt,
		HeartRate:       record.HeartRate,
		BloodPressure:   record.BloodPressure,
		BloodSugar:      record.BloodSugar,
		BodyTemperature: record.BodyTemperature,
	}
}
