package batch

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// DocumentWriter stores documents and maintains the store's range indexes.
type DocumentWriter interface {
	Put(ctx context.Context, collection string, docs ...domain.Document) error
}
