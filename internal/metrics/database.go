package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Query error classes reported on db.query.errors.
const (
	QueryErrorBusy       = "busy"
	QueryErrorConstraint = "constraint"
	QueryErrorOther      = "other"
)

// DatabaseMetrics tracks the single SQLite handle. The pool is capped at one
// connection, so waits show writer contention directly.
type DatabaseMetrics struct {
	connectionsOpen  metric.Int64ObservableGauge
	connectionsInUse metric.Int64ObservableGauge
	connectionWaits  metric.Int64ObservableCounter
	queryDuration    metric.Float64Histogram
	queryErrors      metric.Int64Counter
	db               *sql.DB
}

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	dm := &DatabaseMetrics{}

	var err error

	dm.connectionsOpen, err = meter.Int64ObservableGauge(
		"db.connections.open",
		metric.WithDescription("Open SQLite connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	dm.connectionsInUse, err = meter.Int64ObservableGauge(
		"db.connections.in_use",
		metric.WithDescription("SQLite connections currently running a statement"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	dm.connectionWaits, err = meter.Int64ObservableCounter(
		"db.connections.waits",
		metric.WithDescription("Statements that queued behind another for the SQLite connection"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, err
	}

	// Local file access: most statements finish well under a millisecond,
	// anything near busy_timeout lands in the top buckets.
	dm.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("SQLite statement duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0,
		),
	)
	if err != nil {
		return nil, err
	}

	dm.queryErrors, err = meter.Int64Counter(
		"db.query.errors",
		metric.WithDescription("SQLite statement failures by class"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return dm, nil
}

// RegisterDB observes connection pool stats of db on every collection.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	dm.db = db

	_, err := meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			if dm.db == nil {
				return nil
			}

			stats := dm.db.Stats()
			observer.ObserveInt64(dm.connectionsOpen, int64(stats.OpenConnections))
			observer.ObserveInt64(dm.connectionsInUse, int64(stats.InUse))
			observer.ObserveInt64(dm.connectionWaits, stats.WaitCount)
			return nil
		},
		dm.connectionsOpen,
		dm.connectionsInUse,
		dm.connectionWaits,
	)

	return err
}

// RecordQuery records one statement against table. A lookup that finds no
// row is not a failure.
func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if dm == nil || dm.queryDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("table", table),
	}

	dm.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err == nil || errors.Is(err, sql.ErrNoRows) || dm.queryErrors == nil {
		return
	}
	dm.queryErrors.Add(ctx, 1, metric.WithAttributes(
		append(attrs, attribute.String("error.type", ClassifyQueryError(err)))...,
	))
}

// ClassifyQueryError maps a driver error to busy, constraint or other.
func ClassifyQueryError(err error) string {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return QueryErrorOther
	}
	// Extended result codes keep the primary code in the low byte.
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return QueryErrorBusy
	case sqlite3.SQLITE_CONSTRAINT:
		return QueryErrorConstraint
	default:
		return QueryErrorOther
	}
}
