// Package donation holds the schema for recorded donations. The table is
// provisioned at startup but no endpoint writes to it yet.
package donation

import (
	"time"

	"github.com/uptrace/bun"
)

type Donation struct {
	bun.BaseModel `bun:"table:donations,alias:d"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name" json:"name"`
	Email     string    `bun:"email" json:"email"`
	Amount    float64   `bun:"amount" json:"amount"`
	Currency  string    `bun:"currency" json:"currency"`
	Method    string    `bun:"method" json:"method"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
