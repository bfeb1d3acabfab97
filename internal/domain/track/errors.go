package track

import (
	"errors"
	"fmt"

	"github.com/okian/voidframe/internal/domain/model"
)

// Sentinel kinds for tracking errors.
var (
	ErrPlayNotFound = errors.New("play not found")
	ErrNoRelease    = errors.New("no pass release event")
	ErrMissingRole  = errors.New("missing role")
)

// RoleError reports a required player role absent from a play's
// analysis window. It wraps ErrMissingRole and carries the play key for
// traceability.
type RoleError struct {
	Key  model.PlayKey
	Role string
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("play %s: missing role %q", e.Key, e.Role)
}

func (e *RoleError) Unwrap() error {
	return ErrMissingRole
}
