package member

import (
	"context"
	"fmt"
	"time"

	"membership-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, enrollment *Enrollment) (*Enrollment, error)
	List(ctx context.Context, limit int) ([]Enrollment, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, enrollment *Enrollment) (*Enrollment, error) {
	start := time.Now()
	enrollment.ID = 0
	enrollment.CreatedAt = start.UTC()

	res, err := r.db.NewInsert().Model(enrollment).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "members", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}
	if enrollment.ID == 0 {
		if id, idErr := res.LastInsertId(); idErr == nil {
			enrollment.ID = id
		}
	}
	return enrollment, nil
}

// List returns at most limit enrollments, newest first.
func (r *repository) List(ctx context.Context, limit int) ([]Enrollment, error) {
	start := time.Now()
	enrollments := make([]Enrollment, 0)
	err := r.db.NewSelect().
		Model(&enrollments).
		OrderExpr("id DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "members", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
