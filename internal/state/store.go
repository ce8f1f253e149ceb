// Package state persists the single alert record that survives restarts.
package state

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"wanwatch/internal/config"
	"wanwatch/internal/types"

	"go.uber.org/zap"
)

// TimeLayout is the RFC 2822 form written as the whole record.
const TimeLayout = time.RFC1123Z

// Store is durable CRUD over the alert record.
type Store interface {
	// Read returns the current state. A missing or unparsable record is
	// reported as inactive with a nil error. An error means the backend
	// could not be reached and the state is unknown.
	Read(ctx context.Context) (types.AlertState, error)

	// Write atomically records an active alert raised at raisedAt.
	Write(ctx context.Context, raisedAt time.Time) error

	// Clear removes the record. Clearing an absent record is not an error.
	Clear(ctx context.Context) error
}

// New creates the store selected by cfg.Backend
func New(ctx context.Context, cfg *config.StateConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case config.StateBackendFile, "":
		return NewFileStore(cfg.Path, logger), nil
	case config.StateBackendRedis:
		return NewRedisStore(ctx, &cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidBackend, cfg.Backend)
	}
}

// FormatTimestamp renders t as stored in the record
func FormatTimestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTimestamp parses a stored record. Both zero-padded and unpadded day
// forms are accepted; records written by older releases use the latter.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty record", types.ErrStateCorrupt)
	}
	if t, err := time.Parse(TimeLayout, raw); err == nil {
		return t, nil
	}
	t, err := mail.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", types.ErrStateCorrupt, raw, err)
	}
	return t, nil
}
