// File: cmd/cosctl/app.go
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cosctl/internal/config"
	"cosctl/internal/provider/factory"
	"cosctl/internal/service"
	"cosctl/internal/ui/prompt"
	"cosctl/pkg/endpoints"
	"cosctl/pkg/formatter"
)

const endpointCatalogTimeout = 30 * time.Second

// appContainer holds all the shared dependencies for the application
// This includes configuration, services, formatters, and the logger
type appContainer struct {
	Config           *config.Config
	ConfigManager    *config.ConfigManager
	ProviderFactory  *factory.Factory
	StorageService   *service.StorageService
	WorkflowService  *service.WorkflowService
	EndpointResolver *endpoints.Resolver
	StorageFormatter *formatter.StorageFormatter
	Prompter         prompt.Prompter
	Logger           *slog.Logger

	// Set from the --output flag before any command runs
	Output formatter.OutputFormat
}

// Creates and initializes a new application container
func newApp(logger *slog.Logger) (*appContainer, error) {
	cfgManager, err := config.NewConfigManager()
	if err != nil {
		return nil, err
	}
	return buildApp(cfgManager, os.Stdin, os.Stderr, logger)
}

func buildApp(cfgManager *config.ConfigManager, in io.Reader, promptOut io.Writer, logger *slog.Logger) (*appContainer, error) {
	cfg, err := cfgManager.LoadConfig()
	if err != nil {
		return nil, err
	}

	providerFactory := factory.NewFactory(cfg, logger)
	resolver := endpoints.NewResolver(&http.Client{Timeout: endpointCatalogTimeout}, endpointsURL(cfg, logger), logger)

	// The endpoint catalog only describes the cos service
	var workflowResolver service.EndpointResolver
	if cfg.Workflow.Provider == "" || cfg.Workflow.Provider == "cos" {
		workflowResolver = resolver
	}

	workflowService := service.NewWorkflowService(providerFactory, workflowResolver, service.WorkflowOptions{
		Provider:    cfg.Workflow.Provider,
		Timeout:     cfg.Workflow.Timeout,
		RestoreDays: cfg.Workflow.RestoreDays,
	}, logger)

	return &appContainer{
		Config:           cfg,
		ConfigManager:    cfgManager,
		ProviderFactory:  providerFactory,
		StorageService:   service.NewStorageService(providerFactory, logger),
		WorkflowService:  workflowService,
		EndpointResolver: resolver,
		StorageFormatter: formatter.NewStorageFormatter(),
		Prompter:         prompt.NewStandardPrompter(in, promptOut),
		Logger:           logger,
		Output:           formatter.OutputTable,
	}, nil
}

// endpointsURL picks the catalog location: explicit configuration first, then the
// URL carried by the service credential, then the public default
func endpointsURL(cfg *config.Config, logger *slog.Logger) string {
	if cfg.COS.EndpointsURL != "" {
		return cfg.COS.EndpointsURL
	}
	if cfg.COS.CredentialsFile != "" {
		cred, err := cfg.COS.ServiceCredential()
		if err != nil {
			logger.Debug("Could not read service credential for endpoints URL", "error", err)
		} else if cred.Endpoints != "" {
			return cred.Endpoints
		}
	}
	return endpoints.DefaultURL
}

type appKey struct{}

func withApp(ctx context.Context, app *appContainer) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func appFromContext(ctx context.Context) (*appContainer, error) {
	app, ok := ctx.Value(appKey{}).(*appContainer)
	if !ok || app == nil {
		return nil, errors.New("application context not initialized")
	}
	return app, nil
}
