package contact

import (
	"context"
	"fmt"
	"log/slog"

	"membership-service/internal/metrics"
)

// Notifier delivers an admin notification without failing the caller.
type Notifier interface {
	Send(ctx context.Context, subject, body string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(repo Repository, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

func (s *Service) Submit(ctx context.Context, req MessageRequest) (*Message, error) {
	msg, err := s.repo.Create(ctx, &Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordContact(ctx)
	s.logger.InfoContext(ctx, "contact message saved", "id", msg.ID)

	if s.notifier != nil {
		subject := "New contact message"
		if msg.Subject != "" {
			subject += ": " + msg.Subject
		}
		body := fmt.Sprintf("From: %s <%s>\n\n%s\n", msg.Name, msg.Email, msg.Message)
		s.notifier.Send(ctx, subject, body)
	}
	return msg, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	return s.repo.List(ctx, limit)
}
