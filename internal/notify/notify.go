// Package notify delivers admin notifications about new enrollments and
// contact messages. A failed delivery is logged and counted, never returned to
// the submitter.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"membership-service/internal/config"
	"membership-service/internal/metrics"
)

// ErrNoRecipient is returned by transports that need an address to deliver to.
var ErrNoRecipient = errors.New("notification recipient is not configured")

// sendTimeout bounds a single delivery. Delivery runs inside the form
// request, so this is also the most a slow transport can add to it.
const sendTimeout = 5 * time.Second

// Notifier is a delivery transport.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
	Name() string
	Close() error
}

// Event is the payload published on message-bus transports.
type Event struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sentAt"`
}

func newEvent(recipient, subject, body string) Event {
	return Event{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now().UTC(),
	}
}

// New builds the transport selected by cfg.Notify.Backend.
func New(cfg *config.Config, logger *slog.Logger) (Notifier, error) {
	switch cfg.Notify.Backend {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "smtp":
		return NewSMTPNotifier(cfg.SMTP, logger)
	case "nats":
		return NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject, logger)
	case "kafka":
		return NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	n.logger.InfoContext(ctx, "admin notification",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Close() error { return nil }

// Dispatcher sends notifications to the configured admin inbox.
type Dispatcher struct {
	notifier  Notifier
	recipient string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewDispatcher(notifier Notifier, recipient string, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:  notifier,
		recipient: recipient,
		metrics:   m,
		logger:    logger,
	}
}

// Send delivers subject and body. Errors are logged and recorded only.
func (d *Dispatcher) Send(ctx context.Context, subject, body string) {
	if d == nil || d.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, d.recipient, subject, body); err != nil {
		d.metrics.RecordNotificationFailed(ctx, d.notifier.Name())
		d.logger.WarnContext(ctx, "failed to deliver notification",
			"backend", d.notifier.Name(),
			"subject", subject,
			"error", err,
		)
		return
	}

	d.logger.DebugContext(ctx, "notification delivered", "backend", d.notifier.Name(), "subject", subject)
}

// Close releases the underlying transport.
func (d *Dispatcher) Close() error {
	if d == nil || d.notifier == nil {
		return nil
	}
	return d.notifier.Close()
}
