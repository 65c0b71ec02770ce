package cli

import (
	"context"
	"time"

	"github.com/covena/covena/pkg/adapter"
	"github.com/covena/covena/pkg/advisory"
	"github.com/covena/covena/pkg/policy"
	"github.com/covena/covena/pkg/repository"
	claimuc "github.com/covena/covena/pkg/usecase/claim"
	"github.com/covena/covena/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Advisory
	geminiProject   string
	geminiLocation  string
	geminiModel     string
	advisoryTimeout time.Duration

	// Lifecycle
	policyDir string

	// Optional integrations
	bucket       string
	auditDataset string
	auditTable   string

	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Directory of Rego resolution policies (empty: built-in demo policy)",
			Sources:     cli.EnvVars("COVENA_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("COVENA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for the advisory service configuration
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Generative model for advisory text",
			Value:       "gemini-3-flash-preview",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.DurationFlag{
			Name:        "advisory-timeout",
			Usage:       "Timeout of one advisory request",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("COVENA_ADVISORY_TIMEOUT"),
			Destination: &cfg.advisoryTimeout,
		},
	}
}

// integrationFlags returns flags for optional attachment and audit sinks
func integrationFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for claim attachments",
			Sources:     cli.EnvVars("COVENA_ATTACHMENT_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "audit-dataset",
			Usage:       "BigQuery dataset for claim audit events",
			Sources:     cli.EnvVars("COVENA_AUDIT_DATASET"),
			Destination: &cfg.auditDataset,
		},
		&cli.StringFlag{
			Name:        "audit-table",
			Usage:       "BigQuery table for claim audit events",
			Value:       "claim_audit",
			Sources:     cli.EnvVars("COVENA_AUDIT_TABLE"),
			Destination: &cfg.auditTable,
		},
	}
}

// setupLogger installs the configured logger into the context.
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, nil)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
}

// newAdvisor creates the advisory client
func (cfg *config) newAdvisor(ctx context.Context) (*advisory.Client, error) {
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}
	return advisory.New(gemini, advisory.WithTimeout(cfg.advisoryTimeout)), nil
}

// newPolicy creates the resolution policy engine
func (cfg *config) newPolicy(ctx context.Context) (*policy.Engine, error) {
	engine, err := policy.New(ctx, cfg.policyDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load resolution policy")
	}
	return engine, nil
}

// newUseCase assembles the claim lifecycle controller from configuration.
func (cfg *config) newUseCase(ctx context.Context) (*claimuc.UseCase, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	advisor, err := cfg.newAdvisor(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := cfg.newPolicy(ctx)
	if err != nil {
		return nil, err
	}

	var opts []claimuc.Option
	if cfg.bucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create attachment storage")
		}
		opts = append(opts, claimuc.WithStorage(storage))
	}
	if cfg.auditDataset != "" {
		sink, err := adapter.NewBigQueryAuditSink(ctx, cfg.project, cfg.auditDataset, cfg.auditTable)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create audit sink")
		}
		opts = append(opts, claimuc.WithAuditSink(sink))
	}

	return claimuc.New(repo, advisor, engine, opts...), nil
}
