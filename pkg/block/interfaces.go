package block

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/richtext"
)

// ErrHostUnavailable is returned when the host content API cannot be
// reached within the bounded retry window.
var ErrHostUnavailable = errors.New("host content API unavailable")

// Host is the content API of the editor environment. Implementations are
// expected to be synchronous and in-process; SetField must be atomic and
// recorded as a single undo step by the host.
type Host interface {
	// ListUnits returns the root units of the document tree in order.
	ListUnits(ctx context.Context) ([]*Unit, error)
	// GetField returns the current value of a field. A missing unit or
	// field yields an empty value, not an error.
	GetField(ctx context.Context, unitID, field string) (richtext.Rich, error)
	// SetField rewrites a field value in place.
	SetField(ctx context.Context, unitID, field string, value richtext.Rich) error
}

// Category classifies a block type in the host's type registry.
type Category string

const (
	// CategoryText marks types whose fields carry user-visible text.
	CategoryText Category = "text"
	// CategoryMedia marks embed/attachment types.
	CategoryMedia Category = "media"
	// CategoryLayout marks structural container types.
	CategoryLayout Category = "layout"
)

// TypeInfo describes one registered block type.
type TypeInfo struct {
	Name     string
	Category Category
}

// TypeRegistry is the host's block type registry.
type TypeRegistry interface {
	ListTypes(ctx context.Context) ([]TypeInfo, error)
}

// StaticRegistry is a TypeRegistry over a fixed type list.
type StaticRegistry struct {
	types []TypeInfo
}

// NewStaticRegistry creates a registry from a fixed set of types.
func NewStaticRegistry(types ...TypeInfo) *StaticRegistry {
	return &StaticRegistry{types: types}
}

// ListTypes implements TypeRegistry.
func (r *StaticRegistry) ListTypes(ctx context.Context) ([]TypeInfo, error) {
	out := make([]TypeInfo, len(r.types))
	copy(out, r.types)
	return out, nil
}

// WaitOptions bounds the host availability probe.
type WaitOptions struct {
	// Attempts is the maximum number of probes. Defaults to 5.
	Attempts int
	// Interval is the delay between probes. Defaults to 100ms.
	Interval time.Duration
}

// WaitReady probes the host until it answers a ListUnits call, waiting
// opts.Interval between attempts. It fails with ErrHostUnavailable once
// the retry window is exhausted; it never retries indefinitely.
func WaitReady(ctx context.Context, host Host, opts WaitOptions) error {
	logger := zerolog.Ctx(ctx)

	if opts.Attempts <= 0 {
		opts.Attempts = 5
	}
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if _, lastErr = host.ListUnits(ctx); lastErr == nil {
			logger.Debug().Int("attempt", attempt).Msg("host ready")
			return nil
		}
		logger.Debug().Err(lastErr).Int("attempt", attempt).Msg("host not ready")

		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Errorf("waiting for host: %w", ctx.Err())
		case <-time.After(opts.Interval):
		}
	}

	return errors.Errorf("host not ready after %d attempts (last error: %v): %w", opts.Attempts, lastErr, ErrHostUnavailable)
}
