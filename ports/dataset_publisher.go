package ports

import (
	"context"

	"gonarrate/domain/dataset"
)

// DatasetPublisher stores a dataset where a table: reference can find it
type DatasetPublisher interface {
	// Publish replaces table with d and returns the number of rows written.
	Publish(ctx context.Context, table string, d *dataset.Dataset) (int, error)
}
