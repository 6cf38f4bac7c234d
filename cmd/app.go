package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxreview/internal/config"
	"github.com/teemow/inboxreview/internal/google"
	"github.com/teemow/inboxreview/internal/gtasks"
	"github.com/teemow/inboxreview/internal/instrumentation"
	"github.com/teemow/inboxreview/internal/logging"
	"github.com/teemow/inboxreview/internal/openai"
	"github.com/teemow/inboxreview/internal/review"
	"github.com/teemow/inboxreview/internal/secrets"
	"github.com/teemow/inboxreview/internal/server"
	"github.com/teemow/inboxreview/internal/todoist"
)

// Credential names for the Google Tasks backend.
const (
	googleClientIDKey     = "GOOGLE_CLIENT_ID"
	googleClientSecretKey = "GOOGLE_CLIENT_SECRET"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	store    secrets.Store
	closers  []io.Closer
}

// newApp loads the configuration and sets up logging and instrumentation.
// serving enables the pull-based Prometheus exporter, which only makes sense
// for a long-running server.
func newApp(ctx context.Context, cmd *cobra.Command, serving bool) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = logging.WithOperation(logger, cmd.Name())
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{closer}}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if !serving && instrConfig.MetricsExporter == instrumentation.ExporterPrometheus && instrConfig.TracingExporter == instrumentation.ExporterNone {
		// Nothing would ever scrape a one-shot process.
		instrConfig.Enabled = false
	}
	a.provider, err = instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	a.audit = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	a.provider.SetAuditLogger(a.audit)

	a.store = newSecretStore(cfg)
	return a, nil
}

// Close flushes instrumentation and releases the log file.
func (a *app) Close(ctx context.Context) {
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to shut down instrumentation", logging.Err(err))
		}
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// backendCredentialNames lists the credentials the configured task backend needs.
func (a *app) backendCredentialNames() []string {
	if a.cfg.Backend == config.BackendGTasks {
		return []string{googleClientIDKey, googleClientSecretKey}
	}
	return []string{a.cfg.Credentials.TodoistKey}
}

// credentialNames lists every credential a review run needs.
func (a *app) credentialNames() []string {
	return append([]string{a.cfg.Credentials.OpenAIKey}, a.backendCredentialNames()...)
}

// loadCredentials resolves names from the secret store, logging the missing
// ones together.
func (a *app) loadCredentials(names ...string) (map[string]string, error) {
	creds, err := review.LoadCredentials(a.store, names...)
	if err != nil {
		var missing *review.MissingCredentialError
		if errors.As(err, &missing) {
			a.logger.Error("credentials are missing, nothing was fetched", slog.Any("names", missing.Names))
		}
		return nil, err
	}
	return creds, nil
}

// newSecretStore returns the credential lookup chain: environment, credential
// files, then the OS keychain.
func newSecretStore(cfg *config.Config) secrets.Store {
	return secrets.NewDefaultChain(cfg.Credentials.Dir, cfg.Credentials.KeyringService)
}

// taskLister lists the task lists a backend can review.
type taskLister interface {
	ListTaskLists(ctx context.Context) ([]gtasks.TaskList, error)
}

// backend is a task service together with its section name resolver.
// lists is nil for backends without task lists.
type backend struct {
	tasks    review.TaskService
	sections server.SectionNamer
	lists    taskLister
}

// newBackend builds the configured task service. creds must hold every name
// returned by backendCredentialNames.
func (a *app) newBackend(ctx context.Context, creds map[string]string) (*backend, error) {
	switch a.cfg.Backend {
	case config.BackendGTasks:
		store := google.NewTokenStore(a.cfg.GTasks.TokenDir)
		account := a.cfg.GTasks.Account
		if !store.Has(account) {
			return nil, fmt.Errorf("%w for account %q: run 'inboxreview auth --account %s' first", google.ErrNoToken, account, account)
		}
		conf := google.NewOAuthConfig(creds[googleClientIDKey], creds[googleClientSecretKey])
		httpClient, err := google.HTTPClient(ctx, conf, store, account)
		if err != nil {
			return nil, err
		}
		client, err := gtasks.NewClient(ctx, httpClient)
		if err != nil {
			return nil, err
		}
		src := gtasks.NewSource(client, a.cfg.InboxProjectID, a.cfg.ReviewedSectionID)
		return &backend{tasks: src, sections: src, lists: client}, nil

	case config.BackendTodoist:
		client := todoist.NewClient(creds[a.cfg.Credentials.TodoistKey],
			todoist.WithBaseURL(a.cfg.Todoist.BaseURL),
			todoist.WithRateLimit(a.cfg.Todoist.RequestsPerMinute),
			todoist.WithHTTPClient(&http.Client{Timeout: a.cfg.Todoist.Timeout}),
		)
		src := todoist.NewSource(client)
		return &backend{tasks: src, sections: src}, nil
	}
	return nil, fmt.Errorf("unsupported backend %q", a.cfg.Backend)
}

// newCompleter builds the language model client.
func (a *app) newCompleter(creds map[string]string) review.Completer {
	return openai.NewClient(creds[a.cfg.Credentials.OpenAIKey],
		openai.WithBaseURL(a.cfg.OpenAI.BaseURL),
		openai.WithModel(a.cfg.OpenAI.Model),
		openai.WithMaxTokens(a.cfg.OpenAI.MaxTokens),
		openai.WithHTTPClient(&http.Client{Timeout: a.cfg.OpenAI.Timeout}),
	)
}

// newTaskBackend checks the backend credentials and builds the task service.
// It never needs the language model key.
func (a *app) newTaskBackend(ctx context.Context) (*backend, error) {
	creds, err := a.loadCredentials(a.backendCredentialNames()...)
	if err != nil {
		return nil, err
	}
	return a.newBackend(ctx, creds)
}

// newPipeline checks every credential before any client is created, so a
// missing key fails the command without a single network call.
func (a *app) newPipeline(ctx context.Context) (*review.Pipeline, *backend, error) {
	creds, err := a.loadCredentials(a.credentialNames()...)
	if err != nil {
		return nil, nil, err
	}

	be, err := a.newBackend(ctx, creds)
	if err != nil {
		return nil, nil, err
	}

	pipeline := review.New(a.cfg, be.tasks, a.newCompleter(creds), a.pipelineOptions()...)
	return pipeline, be, nil
}

// newInboxPipeline builds a pipeline that can list the inbox but has no
// language model behind it.
func (a *app) newInboxPipeline(ctx context.Context) (*review.Pipeline, *backend, error) {
	be, err := a.newTaskBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	return review.New(a.cfg, be.tasks, nil, a.pipelineOptions()...), be, nil
}

func (a *app) pipelineOptions() []review.Option {
	return []review.Option{
		review.WithLogger(a.logger),
		review.WithMetrics(a.provider.Metrics()),
		review.WithAuditLogger(a.audit),
	}
}
