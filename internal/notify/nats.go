package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// NATSNotifier publishes notification events on a subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSNotifier(url, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Name("membership-service"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	logger.Info("NATS notifier initialized", "url", url, "subject", subject)

	return &NATSNotifier{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (n *NATSNotifier) Name() string { return "nats" }

func (n *NATSNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(newEvent(recipient, subject, body))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	// Flush so a lost connection surfaces here rather than silently.
	if err := n.conn.FlushTimeout(sendTimeout); err != nil {
		return fmt.Errorf("flush NATS: %w", err)
	}

	n.logger.DebugContext(ctx, "notification published to NATS", "subject", n.subject)
	return nil
}

func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
