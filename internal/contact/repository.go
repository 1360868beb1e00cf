package contact

import (
	"context"
	"fmt"
	"time"

	"membership-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, msg *Message) (*Message, error)
	List(ctx context.Context, limit int) ([]Message, error)
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

func (r *repository) Create(ctx context.Context, msg *Message) (*Message, error) {
	start := time.Now()
	msg.ID = 0
	msg.CreatedAt = start.UTC()

	res, err := r.db.NewInsert().Model(msg).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "contact_messages", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}
	if msg.ID == 0 {
		if id, idErr := res.LastInsertId(); idErr == nil {
			msg.ID = id
		}
	}
	return msg, nil
}

// List returns at most limit messages, newest first.
func (r *repository) List(ctx context.Context, limit int) ([]Message, error) {
	start := time.Now()
	messages := make([]Message, 0)
	err := r.db.NewSelect().
		Model(&messages).
		OrderExpr("id DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "contact_messages", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return messages, nil
}
