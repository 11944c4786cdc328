package ports

import (
	"context"

	"gonarrate/domain/dataset"
)

// DatasetSource decodes one stored dataset. Implementations own a storage
// format (parquet, csv/xlsx, a database table) and never cache.
type DatasetSource interface {
	// Read decodes the dataset stored at ref under the logical name.
	Read(ctx context.Context, name, ref string) (*dataset.Dataset, error)
}

// Fingerprinter is implemented by sources that can cheaply tell whether the
// stored data changed since it was read.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, ref string) (string, error)
}
