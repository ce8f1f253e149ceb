// Package notify delivers the mismatch and recovered messages.
package notify

import (
	"context"
	"time"

	"wanwatch/internal/notify/template"
	"wanwatch/internal/types"

	"go.uber.org/zap"
)

// Sender delivers one text message and reports whether it was accepted.
// Implementations make a single attempt and never retry.
type Sender interface {
	Send(ctx context.Context, text string) bool
}

// Notifier renders the alert messages and hands them to a Sender
type Notifier struct {
	hostname  string
	sender    Sender
	tplLoader *template.Loader
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotifier creates a notifier for hostname
func NewNotifier(hostname string, sender Sender, loader *template.Loader, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		hostname:  hostname,
		sender:    sender,
		tplLoader: loader,
		logger:    logger,
		now:       time.Now,
	}
}

// NotifyMismatch sends the mismatch message
func (n *Notifier) NotifyMismatch(ctx context.Context, obs types.Observation) bool {
	text := n.render(template.Mismatch, template.DefaultMismatchText(obs.RouterIP, obs.DNSIP), obs, time.Time{})
	return n.sender.Send(ctx, text)
}

// NotifyRecovered sends the addresses-match-again message
func (n *Notifier) NotifyRecovered(ctx context.Context, obs types.Observation, raisedAt time.Time) bool {
	text := n.render(template.Recovered, template.DefaultRecovered, obs, raisedAt)
	return n.sender.Send(ctx, text)
}

// render executes a template, falling back to the built-in text on error
func (n *Notifier) render(name template.Name, fallback string, obs types.Observation, raisedAt time.Time) string {
	if n.tplLoader == nil {
		return fallback
	}

	text, err := n.tplLoader.Render(name, template.Data{
		Hostname: n.hostname,
		RouterIP: obs.RouterIP,
		DNSIP:    obs.DNSIP,
		Time:     n.now(),
		RaisedAt: raisedAt,
	})
	if err != nil {
		n.logger.Warn("Failed to render notification, using default text",
			zap.String("template", string(name)),
			zap.Error(err))
		return fallback
	}
	return text
}
