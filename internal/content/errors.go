// Package content implements the post and comment operations: it loads the
// target, applies the ownership rules from package authz and only then
// touches the stores.
package content

import (
	"errors"
	"fmt"

	"github.com/joestump/mediashare/internal/authz"
	"github.com/joestump/mediashare/internal/metrics"
	"github.com/joestump/mediashare/internal/store"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
)

// ValidationError describes the first invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func notFound(kind authz.Kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
}

func forbidden(r authz.Resource, a authz.Action, id string) error {
	metrics.AuthzDeniedTotal.WithLabelValues(string(r.Kind), string(a)).Inc()
	return fmt.Errorf("%w: %s %s %s", ErrForbidden, a, r.Kind, id)
}

// authorize returns nil when p may perform a on r, and a wrapped ErrForbidden otherwise.
func authorize(p *authz.Principal, r authz.Resource, a authz.Action, id string) error {
	if authz.CanMutate(p, r, a) {
		return nil
	}
	return forbidden(r, a, id)
}

func requirePrincipal(p *authz.Principal) error {
	if p == nil || p.ID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// wrapNotFound attaches the resource kind and id to a store.ErrNotFound.
// Other errors, and nil, pass through unchanged.
func wrapNotFound(err error, kind authz.Kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(kind, id)
	}
	return err
}
