package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

// Issuer mints and revokes time-limited credentials for a role. A
// Vault-backed issuer would satisfy the same interface; LocalIssuer is the
// process-local implementation.
type Issuer interface {
	Issue(ctx context.Context, role string, ttl time.Duration) (*models.Credential, error)
	Revoke(ctx context.Context, leaseID string) error
}

// Config holds configuration for the credential Manager.
type Config struct {
	// TTL is the lease duration for issued credentials.
	TTL time.Duration
	// RenewalMargin is how close to expiry a cached credential may get
	// before the manager reissues instead of reusing it.
	RenewalMargin time.Duration
}

// DefaultConfig returns the default configuration: one-hour leases,
// reissued in the last five minutes.
func DefaultConfig() Config {
	return Config{
		TTL:           time.Hour,
		RenewalMargin: 5 * time.Minute,
	}
}

// Manager hands out short-lived credentials per role instead of static
// secrets. Credentials are cached for their lease and reissued when they
// approach expiry, so callers can request on every use without hammering
// the issuer.
type Manager struct {
	issuer Issuer
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]*models.Credential
}

// NewManager creates a credential Manager over the given issuer.
func NewManager(issuer Issuer, config Config, logger *zap.Logger) *Manager {
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	if config.RenewalMargin <= 0 || config.RenewalMargin >= config.TTL {
		config.RenewalMargin = DefaultConfig().RenewalMargin
	}

	return &Manager{
		issuer: issuer,
		config: config,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]*models.Credential),
	}
}

// Credentials returns a valid credential for the role, reusing the cached
// lease while it has more than the renewal margin left.
func (m *Manager) Credentials(ctx context.Context, role string) (*models.Credential, error) {
	if role == "" {
		return nil, fmt.Errorf("role is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if cached, ok := m.cache[role]; ok {
		if cached.TimeRemaining(now) > m.config.RenewalMargin {
			return cached, nil
		}
		m.logger.Debug("cached credential near expiry, reissuing",
			zap.String("role", role),
			zap.Duration("remaining", cached.TimeRemaining(now)))
	}

	cred, err := m.issuer.Issue(ctx, role, m.config.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credentials for role %q: %w", role, err)
	}

	m.cache[role] = cred
	m.logger.Info("issued credentials",
		zap.String("role", role),
		zap.String("lease_id", cred.LeaseID),
		zap.Time("expires_at", cred.ExpiresAt))

	return cred, nil
}

// Revoke revokes the cached lease for a role, if any.
func (m *Manager) Revoke(ctx context.Context, role string) error {
	m.mu.Lock()
	cred, ok := m.cache[role]
	delete(m.cache, role)
	m.mu.Unlock()

	if !ok {
		return nil
	}

	if err := m.issuer.Revoke(ctx, cred.LeaseID); err != nil {
		return fmt.Errorf("failed to revoke lease %q: %w", cred.LeaseID, err)
	}

	m.logger.Info("revoked credentials",
		zap.String("role", role),
		zap.String("lease_id", cred.LeaseID))
	return nil
}

// RevokeAll revokes every cached lease. Used on shutdown so no credential
// outlives the process by more than its lease.
func (m *Manager) RevokeAll(ctx context.Context) error {
	m.mu.Lock()
	creds := make([]*models.Credential, 0, len(m.cache))
	for _, c := range m.cache {
		creds = append(creds, c)
	}
	m.cache = make(map[string]*models.Credential)
	m.mu.Unlock()

	var firstErr error
	for _, c := range creds {
		if err := m.issuer.Revoke(ctx, c.LeaseID); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to revoke lease %q: %w", c.LeaseID, err)
		}
	}
	return firstErr
}

// LocalIssuer mints random credentials in-process. Useful for development
// and as the reference Issuer implementation.
type LocalIssuer struct {
	now func() time.Time
}

// NewLocalIssuer creates a LocalIssuer.
func NewLocalIssuer() *LocalIssuer {
	return &LocalIssuer{now: time.Now}
}

// Issue implements Issuer.
func (i *LocalIssuer) Issue(_ context.Context, role string, ttl time.Duration) (*models.Credential, error) {
	now := i.now()
	return &models.Credential{
		LeaseID:   uuid.NewString(),
		Role:      role,
		Username:  fmt.Sprintf("v-%s-%s", role, uuid.NewString()[:8]),
		Password:  uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Revoke implements Issuer. Local leases have no external state to tear
// down.
func (i *LocalIssuer) Revoke(_ context.Context, _ string) error {
	return nil
}
