package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Credential failure reasons, also used as metric labels.
const (
	ReasonMissing     = "missing"
	ReasonMalformed   = "malformed"
	ReasonExpired     = "expired"
	ReasonSignature   = "signature"
	ReasonRevoked     = "revoked"
	ReasonUnknownUser = "unknown_user"
	ReasonInactive    = "inactive"
)

// CredentialError explains why a credential was rejected.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential rejected (%s): %v", e.Reason, e.Err)
	}
	return "credential rejected (" + e.Reason + ")"
}

func (e *CredentialError) Unwrap() error { return e.Err }

// ErrNoCredential is returned when a request carries neither a bearer token
// nor an authenticated session.
var ErrNoCredential = &CredentialError{Reason: ReasonMissing}

// TokenIssuer mints and verifies HS256 bearer tokens. Each token carries the
// user ID as subject and a unique ID (jti) so it can be revoked on logout.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

// Issue returns a signed token for userID and the claims it carries.
func (i *TokenIssuer) Issue(userID string) (string, *jwt.RegisteredClaims, error) {
	now := i.now()
	claims := &jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Failures are reported as *CredentialError.
func (i *TokenIssuer) Verify(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &CredentialError{Reason: ReasonExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, &CredentialError{Reason: ReasonSignature, Err: err}
	default:
		return nil, &CredentialError{Reason: ReasonMalformed, Err: err}
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, &CredentialError{Reason: ReasonMalformed, Err: errors.New("token lacks subject or id")}
	}
	return claims, nil
}
