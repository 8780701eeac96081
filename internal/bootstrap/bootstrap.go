package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	analyticsinadapter "healthdash/internal/modules/analytics/adapter/in"
	analyticsoutadapter "healthdash/internal/modules/analytics/adapter/out"
	analyticsservice "healthdash/internal/modules/analytics/service"
	analyticsusecase "healthdash/internal/modules/analytics/usecase"
	recordsinadapter "healthdash/internal/modules/records/adapter/in"
	recordsoutadapter "healthdash/internal/modules/records/adapter/out"
	recordsservice "healthdash/internal/modules/records/service"
	recordsusecase "healthdash/internal/modules/records/usecase"
	sessioninadapter "healthdash/internal/modules/session/adapter/in"
	sessionoutadapter "healthdash/internal/modules/session/adapter/out"
	"healthdash/internal/modules/session/domain"
	sessionout "healthdash/internal/modules/session/port/out"
	sessionservice "healthdash/internal/modules/session/service"
	sessionusecase "healthdash/internal/modules/session/usecase"
	"healthdash/internal/platform/clock"
	"healthdash/internal/platform/config"
	"healthdash/internal/platform/id"
	"healthdash/internal/platform/logging"
	"healthdash/internal/platform/telemetry"
	"healthdash/internal/platform/transport"
	uiapp "healthdash/internal/ui/app"
)

const serviceName = "healthdash"

type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Session      *sessionservice.Store
	SessionCLI   sessioninadapter.CLIHandler
	RecordsCLI   recordsinadapter.CLIHandler
	AnalyticsCLI analyticsinadapter.CLIHandler

	closers []func(context.Context) error
}

type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger skips building the file logger from config.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New wires every module against cfg and rehydrates the persisted session.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	app := &App{Config: cfg}

	logger := o.logger
	if logger == nil {
		built, err := logging.New(cfg.LogLevel, cfg.LogPath)
		if err != nil {
			return nil, err
		}
		logger = built
		app.closers = append(app.closers, func(context.Context) error {
			_ = logger.Sync()
			return nil
		})
	}
	app.Logger = logger

	ctx := context.Background()
	app.closers = append(app.closers, telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint, cfg.OTLPInsecure, logger))

	kv, err := newKeyValueStore(cfg)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	if closer, ok := kv.(interface{ Close() error }); ok {
		app.closers = append(app.closers, func(context.Context) error { return closer.Close() })
	}

	client := transport.New(transport.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryWait:  cfg.RetryWait,
		RateLimit:  cfg.RateLimit,
	}, transport.WithLogger(logger.Named("transport")), transport.WithIDGenerator(id.UUID{}))

	store := sessionservice.NewStore(kv, clock.SystemClock{}, logger.Named("session"))
	sessionUC := sessionusecase.NewInteractor(store, sessionoutadapter.NewHTTPAuthGateway(client))

	recordsUC := recordsusecase.NewInteractor(
		recordsservice.NewRecordService(recordsoutadapter.NewHTTPRecordGateway(client)),
		sessionUC,
	)
	analyticsUC := analyticsusecase.NewInteractor(
		analyticsservice.NewStatsService(analyticsoutadapter.NewHTTPStatsGateway(client), logger.Named("analytics")),
		recordsUC,
		sessionUC,
	)

	state := store.Rehydrate(ctx)
	logger.Debug("session rehydrated", zap.Stringer("state", state), zap.String("api", cfg.APIBaseURL))

	app.Session = store
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.RecordsCLI = recordsinadapter.NewCLIHandler(recordsUC)
	app.AnalyticsCLI = analyticsinadapter.NewCLIHandler(analyticsUC)
	return app, nil
}

func newKeyValueStore(cfg config.Config) (sessionout.KeyValueStore, error) {
	switch cfg.SessionBackend {
	case config.BackendFile:
		return sessionoutadapter.NewFileKeyValueStore(cfg.StateDir), nil
	default:
		store, err := sessionoutadapter.NewSQLiteKeyValueStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("new session store: %w", err)
		}
		return store, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	current, signedIn := app.Session.Current()
	model := uiapp.NewModel(app.SessionCLI, app.RecordsCLI, app.AnalyticsCLI, signedIn, current.Username)
	program := tea.NewProgram(model, tea.WithAltScreen())

	cancel := app.Session.Subscribe(func(state domain.State, session domain.Session) {
		program.Send(uiapp.SessionChangedMsg{
			Authenticated: state == domain.Authenticated,
			Username:      session.Username,
		})
	})
	defer cancel()

	_, err := program.Run()
	return err
}
