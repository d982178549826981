// Package storage mirrors the loaded organization table into external
// stores so other tools can query it.
package storage

import (
	"context"

	"volmap/models"
)

// Mirror replaces a store's copy of the organizations with the given table.
// Sync returns the number of records written.
type Mirror interface {
	Sync(ctx context.Context, table *models.Table) (int, error)
	Close(ctx context.Context) error
}
