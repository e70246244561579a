package models

import "time"

// Credential is a time-limited secret issued for a role. Agents request
// credentials on demand instead of holding static secrets; each credential
// carries a lease that expires and can be revoked early.
type Credential struct {
	LeaseID   string    `json:"lease_id"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the credential's lease has passed at the given
// instant.
func (c *Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// TimeRemaining returns how long the lease is still valid at the given
// instant. Negative once expired.
func (c *Credential) TimeRemaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}
