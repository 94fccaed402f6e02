package search

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
)

// Source defines the read contract of the backing document store.
// Both calls return documents in store order and may fail with any error;
// the service classifies failures.
type Source interface {
	Scan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error)
	RangeScan(ctx context.Context, collection string, r scan.Range) ([]domain.Document, error)
}
