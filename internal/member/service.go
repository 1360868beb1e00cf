package member

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"membership-service/internal/metrics"
)

// Notifier delivers an admin notification. Delivery problems are the
// notifier's concern; callers never fail because of them.
type Notifier interface {
	Send(ctx context.Context, subject, body string)
}

type Service interface {
	Submit(ctx context.Context, req EnrollmentRequest) (*Enrollment, error)
	List(ctx context.Context, limit int) ([]Enrollment, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(repo Repository, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

func (s *service) Submit(ctx context.Context, req EnrollmentRequest) (*Enrollment, error) {
	enrollment, err := s.repo.Create(ctx, req.toEnrollment())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEnrollment(ctx)
	s.logger.InfoContext(ctx, "enrollment saved", "id", enrollment.ID)

	if s.notifier != nil {
		s.notifier.Send(ctx, "New membership enrollment", enrollmentBody(enrollment))
	}
	return enrollment, nil
}

func (s *service) List(ctx context.Context, limit int) ([]Enrollment, error) {
	return s.repo.List(ctx, limit)
}

func enrollmentBody(e *Enrollment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new membership enrollment was submitted (#%d).\n\n", e.ID)
	fmt.Fprintf(&b, "Name: %s\n", e.FullName)
	fmt.Fprintf(&b, "Email: %s\n", e.Email)
	if e.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", e.Country)
	}
	if e.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", e.Phone)
	}
	if e.Occupation != "" {
		fmt.Fprintf(&b, "Occupation: %s\n", e.Occupation)
	}
	if e.Institution != "" {
		fmt.Fprintf(&b, "Institution: %s\n", e.Institution)
	}
	if e.CommunicationPref != "" {
		fmt.Fprintf(&b, "Preferred contact: %s\n", e.CommunicationPref)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, "\nReason:\n%s\n", e.Reason)
	}
	return b.String()
}
