package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token cannot be parsed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingAgentID is returned when a token carries no agent
	// identity.
	ErrMissingAgentID = errors.New("token has no agent_id claim")
)

// AgentClaims are the JWT claims carried by an agent token: the non-human
// principal's identity plus the OAuth-style scopes it was granted.
type AgentClaims struct {
	jwt.RegisteredClaims
	AgentID string   `json:"agent_id"`
	Scopes  []string `json:"scopes,omitempty"`
}

// TokenService issues and validates HMAC-signed agent tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
func NewTokenService(secret []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// TTLSeconds returns the token lifetime in whole seconds.
func (s *TokenService) TTLSeconds() int64 {
	return int64(s.ttl.Seconds())
}

// Issue mints a signed token for an agent with the given scopes.
func (s *TokenService) Issue(agentID string, scopes []string) (string, error) {
	if agentID == "" {
		return "", ErrMissingAgentID
	}

	now := time.Now()
	claims := AgentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   agentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		AgentID: agentID,
		Scopes:  scopes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims.
func (s *TokenService) Validate(tokenString string) (*AgentClaims, error) {
	claims := &AgentClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AgentID == "" {
		return nil, ErrMissingAgentID
	}
	return claims, nil
}
