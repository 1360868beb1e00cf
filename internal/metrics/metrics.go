package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics
	Health   *HealthMetrics

	enrollmentsSubmitted metric.Int64Counter
	contactsReceived     metric.Int64Counter
	accountsRegistered   metric.Int64Counter
	logins               metric.Int64Counter
	notificationsFailed  metric.Int64Counter
}

// New builds the collectors on the globally registered meter provider. When no
// provider has been installed the OTel no-op implementation is used.
func New(serviceName string) (*Metrics, error) {
	return NewWithMeter(otel.Meter(serviceName))
}

func NewWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Health, err = NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.enrollmentsSubmitted, err = meter.Int64Counter(
		"membership.enrollments.submitted",
		metric.WithDescription("Total number of membership enrollments stored"),
		metric.WithUnit("{enrollment}"),
	)
	if err != nil {
		return nil, err
	}

	m.contactsReceived, err = meter.Int64Counter(
		"membership.contacts.received",
		metric.WithDescription("Total number of contact messages stored"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	m.accountsRegistered, err = meter.Int64Counter(
		"membership.accounts.registered",
		metric.WithDescription("Total number of member accounts created"),
		metric.WithUnit("{account}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"membership.logins",
		metric.WithDescription("Login attempts by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.notificationsFailed, err = meter.Int64Counter(
		"membership.notifications.failed",
		metric.WithDescription("Admin notifications that could not be delivered"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordEnrollment(ctx context.Context) {
	if m != nil && m.enrollmentsSubmitted != nil {
		m.enrollmentsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordContact(ctx context.Context) {
	if m != nil && m.contactsReceived != nil {
		m.contactsReceived.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAccountRegistered(ctx context.Context) {
	if m != nil && m.accountsRegistered != nil {
		m.accountsRegistered.Add(ctx, 1)
	}
}

// RecordLogin counts a login attempt; result is "success" or "failure".
func (m *Metrics) RecordLogin(ctx context.Context, result string) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

func (m *Metrics) RecordNotificationFailed(ctx context.Context, backend string) {
	if m != nil && m.notificationsFailed != nil {
		m.notificationsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Health: &HealthMetrics{}}
}
