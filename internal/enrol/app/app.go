package app

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory/drivers/rest"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/service"
	"github.com/aussiebroadwan/coursedesk/pkg/coursesdk"
	"github.com/aussiebroadwan/coursedesk/pkg/httpx"
	"github.com/aussiebroadwan/coursedesk/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the Directory Store client and the services on top of it.
type Application struct {
	cfg    Config
	logger *slog.Logger

	client *coursesdk.SDKClient
	store  directory.Store

	Catalog      *service.CatalogService
	Registration *service.RegistrationService
	Roster       *service.RosterService
}

// New builds the application. Logs go to logOutput, or stderr when nil.
func New(cfg Config, logOutput io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "coursedesk",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  logOutput,
		}),
	}

	app.client = coursesdk.NewSDKClient(cfg.APIBaseURL)
	app.client.HTTPClient = &http.Client{
		Timeout:   cfg.APITimeout,
		Transport: app.transport(http.DefaultTransport),
	}

	app.store = rest.NewStore(app.client, rest.Options{
		ScanConcurrency: cfg.ScanConcurrency,
		Logger:          app.logger,
	})

	app.Catalog = &service.CatalogService{Store: app.store}
	app.Registration = &service.RegistrationService{Store: app.store}
	app.Roster = &service.RosterService{Store: app.store, Concurrency: cfg.ScanConcurrency}

	app.logger.Debug("application initialised", slog.String("api_base_url", app.client.BaseURL))
	return app, nil
}

// transport logs and stamps each call, then waits for the rate limiter.
func (a *Application) transport(base http.RoundTripper) http.RoundTripper {
	limit := httpx.RateLimitConfig{
		RequestsPerWindow: a.cfg.RequestsPerSecond,
		Window:            time.Second,
		Burst:             a.cfg.Burst,
	}
	return &slogx.Transport{
		Base: &httpx.RateLimitedTransport{
			Base:    base,
			Limiter: httpx.NewLimiter(limit),
		},
		Logger: a.logger,
	}
}

// NewWorkflow returns an enrollment workflow bound to the application's
// store and settings. Callers set the callbacks they need.
func (a *Application) NewWorkflow() *service.EnrollmentWorkflow {
	wf := service.NewEnrollmentWorkflow(a.store, a.logger)
	wf.AutoCloseDelay = a.cfg.AutoCloseDelay
	return wf
}

// NewCatalogBrowser returns a browser over courses using the configured page
// size and debounce period.
func (a *Application) NewCatalogBrowser(courses []domain.CourseWithClasses) *service.CatalogBrowser {
	return service.NewCatalogBrowser(courses, a.cfg.PerPage, a.cfg.Debounce)
}

func (a *Application) Config() Config         { return a.cfg }
func (a *Application) Logger() *slog.Logger   { return a.logger }
func (a *Application) Store() directory.Store { return a.store }
