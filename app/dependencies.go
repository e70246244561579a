package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/agent-authz/auth"
	"github.com/upb/agent-authz/config"
	"github.com/upb/agent-authz/middleware"
	"github.com/upb/agent-authz/repositories"
	"github.com/upb/agent-authz/repositories/file"
	"github.com/upb/agent-authz/repositories/postgres"
	"github.com/upb/agent-authz/services/audit"
	"github.com/upb/agent-authz/services/credentials"
	"github.com/upb/agent-authz/services/policy"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	// DB is nil unless the rule source is postgres.
	DB *postgres.DB

	// Policy
	RuleSource repositories.RuleSource
	Location   *time.Location
	Engine     *policy.Engine

	// Services
	Audit       *audit.Service
	Credentials *credentials.Manager
	Tokens      *auth.TokenService

	// Middleware
	AuthMiddleware   *middleware.AuthMiddleware
	PolicyMiddleware *middleware.PolicyEnforcementMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initPolicy(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	if err := deps.initAudit(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit dispatch: %w", err)
	}

	deps.initCredentials(cfg)

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.PolicyMiddleware = middleware.NewPolicyEnforcementMiddleware(deps.Engine, deps.Audit, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initPolicy selects the rule source, compiles the definitions, and builds
// the engine.
func (d *Dependencies) initPolicy(ctx context.Context, cfg *config.Config) error {
	loc, err := cfg.Policy.Location()
	if err != nil {
		return err
	}
	d.Location = loc

	switch cfg.Policy.Source {
	case config.PolicySourceBuiltin:
		d.RuleSource = &repositories.BuiltinSource{Definitions: policy.DefaultDefinitions()}
	case config.PolicySourceFile:
		d.RuleSource = file.NewRuleSource(cfg.Policy.FilePath, d.Logger)
	case config.PolicySourcePostgres:
		db, err := postgres.NewDB(cfg.Database, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		d.DB = db
		d.RuleSource = postgres.NewRuleRepository(db, d.Logger)
	default:
		return fmt.Errorf("unknown policy source %q", cfg.Policy.Source)
	}

	defs, err := d.RuleSource.LoadDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rule definitions: %w", err)
	}

	rs, err := policy.Compile(defs, policy.CompileOptions{Location: loc})
	if err != nil {
		return fmt.Errorf("failed to compile rule definitions: %w", err)
	}

	d.Engine = policy.NewEngine(rs, d.Logger)

	d.Logger.Info("policy engine initialized",
		zap.String("source", cfg.Policy.Source),
		zap.Int("rules", rs.Len()))
	return nil
}

// initAudit starts the async audit dispatch workers.
func (d *Dependencies) initAudit(cfg *config.Config) error {
	svc := audit.NewService(audit.NewLogSink(d.Logger), d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})
	if err := svc.Start(); err != nil {
		return err
	}
	d.Audit = svc

	d.Logger.Info("audit dispatch started",
		zap.Int("buffer_size", cfg.Audit.BufferSize),
		zap.Int("workers", cfg.Audit.WorkerCount))
	return nil
}

func (d *Dependencies) initCredentials(cfg *config.Config) {
	d.Credentials = credentials.NewManager(credentials.NewLocalIssuer(), credentials.Config{
		TTL:           cfg.Credentials.TTL,
		RenewalMargin: cfg.Credentials.RenewalMargin,
	}, d.Logger)
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Config validation rejects a missing secret in production, so this
		// branch only runs in development.
		secret = uuid.NewString()
		d.Logger.Warn("JWT_SECRET not set, generated ephemeral secret; tokens will not survive restarts")
	}

	tokens, err := auth.NewTokenService([]byte(secret), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	d.Tokens = tokens
	d.AuthMiddleware = middleware.NewAuthMiddleware(tokens, d.Logger)
	return nil
}

// Close releases all resources: it drains the audit queue, revokes
// outstanding credential leases, and closes the database connection.
func (d *Dependencies) Close(ctx context.Context) error {
	var firstErr error

	if d.Audit != nil {
		if err := d.Audit.Stop(d.Config.Audit.ShutdownTimeout); err != nil {
			d.Logger.Warn("audit dispatch did not drain cleanly", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if d.Credentials != nil {
		if err := d.Credentials.RevokeAll(ctx); err != nil {
			d.Logger.Warn("failed to revoke credential leases", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
