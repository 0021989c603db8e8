package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
)

const defaultStoreTimeout = 5 * time.Second

// storeCall runs fn under the store deadline. Failures that are neither an
// attendance outcome nor one of expected come back as *attendance.PersistenceError.
func storeCall[T any](ctx context.Context, timeout time.Duration, op, target string, fn func(context.Context) (T, error), expected ...error) (T, error) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(callCtx)
	if err == nil || attendance.IsDomainError(err) {
		return v, err
	}
	for _, e := range expected {
		if errors.Is(err, e) {
			return v, err
		}
	}
	return v, attendance.NewPersistenceError(op, target, err)
}
