package app

import (
	"context"

	"github.com/autopost/autopost/internal/adapter"
	"github.com/autopost/autopost/internal/api"
	"github.com/autopost/autopost/internal/config"
	"github.com/autopost/autopost/internal/credentials"
	"github.com/autopost/autopost/internal/orchestrator"
	"github.com/autopost/autopost/internal/progress"
	"github.com/autopost/autopost/internal/registry"
)

// App is the main application container holding all dependencies.
type App struct {
	Config       *config.Config
	Credentials  *credentials.Store
	API          *api.Client
	Registry     *registry.Registry
	Orchestrator *orchestrator.Orchestrator
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := credentials.NewStore(ctx, cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(api.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.HTTPTimeout,
		Credentials: store,
	})

	adapters := []adapter.Adapter{
		adapter.NewLinkedIn(client),
		adapter.NewX(client),
		adapter.NewSubstack(client, store),
	}

	orch := orchestrator.New(adapters, progress.NewReporter(), orchestrator.Options{
		SuccessTTL: cfg.SuccessBannerTTL,
		ErrorTTL:   cfg.ErrorBannerTTL,
	})

	return &App{
		Config:       cfg,
		Credentials:  store,
		API:          client,
		Registry:     registry.New(client),
		Orchestrator: orch,
	}, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Credentials != nil {
		return a.Credentials.Close()
	}
	return nil
}
