// Package storage owns the durable expense collection. The Store interface
// is the persistence boundary; backing adapters are injected so tests run
// against memory and production against a file or SQLite database.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// Store is durable CRUD over the full expense collection.
//
// GetAll never fails: an absent, corrupt or unavailable backing degrades to
// an empty collection and is logged. Write operations leave the previously
// persisted state unchanged when they error. Update and Delete are silent
// no-ops for unknown ids.
type Store interface {
	GetAll(ctx context.Context) []core.Expense
	Add(ctx context.Context, draft core.Draft) (core.Expense, error)
	Update(ctx context.Context, id string, patch core.Patch) error
	Delete(ctx context.Context, id string) error
	SaveAll(ctx context.Context, expenses []core.Expense) error
}
