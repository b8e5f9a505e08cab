// Package store holds the durable ordered message log. Sequence numbers are
// assigned on append, survive deletes unchanged and are never reused.
package store

import (
	"errors"
	"fmt"

	"github.com/xjzfwqgf/chat-web/internal/metrics"
)

// ErrPersistence marks a storage failure. Nothing was changed and nothing may
// be broadcast for the failed operation.
var ErrPersistence = errors.New("persistence error")

func persistenceError(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
