package usecase_test

import (
	"context"
	"errors"
	"testing"

	"healthdash/internal/modules/analytics/domain"
	"healthdash/internal/modules/analytics/service"
	"healthdash/internal/modules/analytics/usecase"
	recordsdto "healthdash/internal/modules/records/dto"
	sessiondto "healthdash/internal/modules/session/dto"
	apperrors "healthdash/internal/platform/errors"
	"healthdash/internal/platform/transport"
)

type fakeRecords struct {
	records []recordsdto.RecordOutput
	err     error
}

func (f fakeRecords) List(context.Context) ([]recordsdto.RecordOutput, error) { return f.records, f.err }
func (f fakeRecords) Get(context.Context, int64) (recordsdto.RecordOutput, error) {
	return recordsdto.RecordOutput{}, nil
}
func (f fakeRecords) Create(context.Context, recordsdto.CreateInput) (recordsdto.RecordOutput, error) {
	return recordsdto.RecordOutput{}, nil
}
func (f fakeRecords) Update(context.Context, recordsdto.UpdateInput) (recordsdto.RecordOutput, error) {
	return recordsdto.RecordOutput{}, nil
}
func (f fakeRecords) Delete(context.Context, int64) (recordsdto.DeleteOutput, error) {
	return recordsdto.DeleteOutput{}, nil
}

type fakeSessions struct {
	currentErr error
}

func (f fakeSessions) Register(context.Context, sessiondto.CredentialsInput) (sessiondto.AccountOutput, error) {
	return sessiondto.AccountOutput{}, nil
}
func (f fakeSessions) Login(context.Context, sessiondto.CredentialsInput) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{}, nil
}
func (f fakeSessions) Logout(context.Context) error { return nil }
func (f fakeSessions) Current(context.Context) (sessiondto.SessionOutput, error) {
	if f.currentErr != nil {
		return sessiondto.SessionOutput{}, f.currentErr
	}
	return sessiondto.SessionOutput{Username: "carol", Token: "tok"}, nil
}
func (f fakeSessions) HandleAuthFailure(_ context.Context, err error) error { return err }

type fakeStats struct {
	stats domain.Stats
	err   error
	calls int
}

func (f *fakeStats) Stats(_ context.Context, username, _ string) (domain.Stats, error) {
	f.calls++
	if f.err != nil {
		return domain.Stats{}, f.err
	}
	s := f.stats
	s.Username = username
	return s, nil
}

func TestDashboardSkipsStatsWithoutRecords(t *testing.T) {
	t.Parallel()
	gw := &fakeStats{}
	uc := usecase.NewInteractor(service.NewStatsService(gw, nil), fakeRecords{records: []recordsdto.RecordOutput{}}, fakeSessions{})

	out, err := uc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if gw.calls != 0 || out.Stats != nil || out.StatsPending {
		t.Fatalf("stats must not be requested without records: calls=%d out=%+v", gw.calls, out)
	}
	if out.Username != "carol" {
		t.Fatalf("unexpected username %q", out.Username)
	}
}

func TestDashboardFetchesStatsWhenRecordsExist(t *testing.T) {
	t.Parallel()
	gw := &fakeStats{stats: domain.Stats{TotalSteps: 3000, RecordCount: 2, AverageSteps: 1500}}
	records := fakeRecords{records: []recordsdto.RecordOutput{{ID: 1}, {ID: 2}}}
	uc := usecase.NewInteractor(service.NewStatsService(gw, nil), records, fakeSessions{})

	out, err := uc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if out.Stats == nil || out.Stats.TotalSteps != 3000 || out.Stats.Username != "carol" || len(out.Records) != 2 {
		t.Fatalf("unexpected dashboard %+v", out)
	}
}

func TestDashboardReportsPendingStats(t *testing.T) {
	t.Parallel()
	gw := &fakeStats{err: &transport.RequestError{Kind: transport.KindHTTP, Status: 404, Message: "Stats not found"}}
	records := fakeRecords{records: []recordsdto.RecordOutput{{ID: 1}}}
	uc := usecase.NewInteractor(service.NewStatsService(gw, nil), records, fakeSessions{})

	out, err := uc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !out.StatsPending || out.Stats != nil {
		t.Fatalf("expected pending stats, got %+v", out)
	}
}

func TestDashboardSurfacesRecordErrors(t *testing.T) {
	t.Parallel()
	boom := &transport.RequestError{Kind: transport.KindHTTP, Status: 500, Message: "Internal Server Error"}
	gw := &fakeStats{}
	uc := usecase.NewInteractor(service.NewStatsService(gw, nil), fakeRecords{err: boom}, fakeSessions{})

	if _, err := uc.Dashboard(context.Background()); err != boom {
		t.Fatalf("expected record error verbatim, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("stats must not be requested after a failed list")
	}
}

func TestStatsRequiresSession(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewStatsService(&fakeStats{}, nil), fakeRecords{}, fakeSessions{currentErr: apperrors.ErrNotAuthenticated})
	if _, err := uc.Stats(context.Background()); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
}

func TestStatsSurfacesServerErrors(t *testing.T) {
	t.Parallel()
	gw := &fakeStats{err: &transport.RequestError{Kind: transport.KindHTTP, Status: 404, Message: "Stats not found"}}
	uc := usecase.NewInteractor(service.NewStatsService(gw, nil), fakeRecords{}, fakeSessions{})
	_, err := uc.Stats(context.Background())
	if err == nil || err.Error() != "Stats not found" {
		t.Fatalf("expected verbatim message, got %v", err)
	}
}
