// Package repository defines the evaluation store interface and errors.
package repository

import (
	"context"

	"github.com/okian/caliper/internal/domain/model"
)

// MetricRow is the projection read by the analytics layer: generation
// parameters plus the four stored metric fields.
type MetricRow struct {
	Model       string
	Temperature float64
	TopP        float64
	Metrics     model.MetricRecord
}

// Store provides read/write access to persisted evaluations. Rows are
// insert-only; nothing in the system updates or deletes them.
type Store interface {
	// Insert persists one evaluation and returns it with ID and CreatedAt set.
	Insert(ctx context.Context, ev model.Evaluation) (model.Evaluation, error)

	// List returns evaluations ordered by id, paginated by offset and limit.
	List(ctx context.Context, offset, limit int) ([]model.Evaluation, error)

	// MetricRows returns the full row set as analytics input.
	MetricRows(ctx context.Context) ([]MetricRow, error)

	// Count returns the number of stored evaluations.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying database handle.
	Close() error
}

// Seeder is implemented by stores that can populate themselves from a CSV
// snapshot. Seeding only applies to an empty store.
type Seeder interface {
	SeedFromCSV(ctx context.Context, path string) (int, error)
}
