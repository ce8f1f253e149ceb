// Package reconciler decides, once per poll cycle, whether the divergence
// alert must be raised, suppressed or cleared, and applies that decision.
package reconciler

import (
	"context"
	"time"

	"wanwatch/internal/state"
	"wanwatch/internal/types"

	"go.uber.org/zap"
)

// Notifier delivers the two alert messages. Each call is a single attempt.
type Notifier interface {
	NotifyMismatch(ctx context.Context, obs types.Observation) bool
	NotifyRecovered(ctx context.Context, obs types.Observation, raisedAt time.Time) bool
}

// Decide classifies one cycle. Rows are evaluated in order: a missing
// router address, a missing DNS address, then the match/mismatch table
// against the current alert state.
func Decide(obs types.Observation, current types.AlertState) types.Action {
	switch {
	case !obs.HaveRouter:
		return types.ActionSkipRouterUnavailable
	case !obs.HaveDNS:
		return types.ActionSkipDNSUnavailable
	case obs.RouterIP == obs.DNSIP && !current.Active:
		return types.ActionNone
	case obs.RouterIP == obs.DNSIP:
		return types.ActionClear
	case !current.Active:
		return types.ActionRaise
	default:
		return types.ActionSuppress
	}
}

// Reconciler owns the alert state record. It is the only writer.
type Reconciler struct {
	store    state.Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// New creates a reconciler
func New(store state.Store, notifier Notifier, logger *zap.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cycle evaluates one observation against the stored state. State is
// advanced only after the corresponding notification was accepted, so a
// failed send is retried on the next cycle. The returned state is what is
// durably stored when Cycle returns. If the store cannot be read the cycle
// is skipped without notifying.
func (r *Reconciler) Cycle(ctx context.Context, obs types.Observation) types.CycleResult {
	start := r.now()
	current, err := r.store.Read(ctx)
	if err != nil {
		r.logger.Warn("Alert state unavailable, skipping comparison",
			zap.String("router_ip", obs.RouterIP),
			zap.String("dns_ip", obs.DNSIP),
			zap.Error(err))
		return types.CycleResult{
			Observation: obs,
			Action:      types.ActionSkipStateUnavailable,
			State:       current,
			StartedAt:   start,
			Duration:    r.now().Sub(start),
		}
	}
	action := Decide(obs, current)

	res := types.CycleResult{
		Observation: obs,
		Action:      action,
		State:       current,
		StartedAt:   start,
	}

	fields := []zap.Field{
		zap.String("router_ip", obs.RouterIP),
		zap.String("dns_ip", obs.DNSIP),
		zap.Bool("alert_active", current.Active),
	}

	switch action {
	case types.ActionSkipRouterUnavailable:
		r.logger.Warn("Router IP unavailable, skipping comparison", fields...)

	case types.ActionSkipDNSUnavailable:
		r.logger.Warn("DNS IP unavailable, skipping comparison", fields...)

	case types.ActionNone:
		r.logger.Debug("IP addresses match", fields...)

	case types.ActionSuppress:
		r.logger.Debug("IP addresses still differ, alert already sent",
			append(fields,
				zap.Time("raised_at", current.RaisedAt),
				zap.Duration("active_for", start.Sub(current.RaisedAt)))...)

	case types.ActionRaise:
		r.logger.Info("IP address mismatch, sending alert", fields...)
		if !r.notifier.NotifyMismatch(ctx, obs) {
			r.logger.Warn("Failed to send mismatch notification, retrying next cycle", fields...)
			break
		}
		res.Notified = true

		raisedAt := r.now()
		if err := r.store.Write(ctx, raisedAt); err != nil {
			r.logger.Warn("Mismatch notification sent but alert state was not saved",
				append(fields, zap.Error(err))...)
			break
		}
		res.State = types.ActiveSince(raisedAt)
		r.logger.Info("Alert raised", zap.Time("raised_at", raisedAt))

	case types.ActionClear:
		r.logger.Info("IP addresses are the same again, resetting alert",
			append(fields, zap.Time("raised_at", current.RaisedAt))...)
		if !r.notifier.NotifyRecovered(ctx, obs, current.RaisedAt) {
			r.logger.Warn("Failed to send recovery notification, retrying next cycle", fields...)
			break
		}
		res.Notified = true

		if err := r.store.Clear(ctx); err != nil {
			r.logger.Warn("Recovery notification sent but alert state was not cleared",
				append(fields, zap.Error(err))...)
			break
		}
		res.State = types.Inactive()
		r.logger.Info("Alert has been reset",
			zap.Duration("was_active_for", r.now().Sub(current.RaisedAt)))
	}

	res.Duration = r.now().Sub(start)
	return res
}
