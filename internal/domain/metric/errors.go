package metric

import (
	"errors"
	"fmt"

	"github.com/okian/voidframe/internal/domain/model"
)

// ErrUndefined signals a metric that cannot be computed for a play.
// It is a propagated null, distinct from a computed zero, and must
// never be coerced to a default value downstream.
var ErrUndefined = errors.New("metric undefined")

// UndefinedError wraps ErrUndefined with the play key and metric name
// for traceability.
type UndefinedError struct {
	Key    model.PlayKey
	Metric string
	Reason string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("play %s: %s undefined: %s", e.Key, e.Metric, e.Reason)
}

func (e *UndefinedError) Unwrap() error {
	return ErrUndefined
}

func undefined(key model.PlayKey, metric, reason string) error {
	return &UndefinedError{Key: key, Metric: metric, Reason: reason}
}
