package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	dombatch "github.com/kailas-cloud/docsearch/internal/domain/batch"
	"github.com/kailas-cloud/docsearch/internal/logger"
)

// MaxBatchSize is the default number of documents written per store call.
const MaxBatchSize = 100

// Service imports documents in chunks with per-item error reporting.
type Service struct {
	docs         DocumentWriter
	maxBatchSize int
}

// New creates a batch import service.
func New(docs DocumentWriter) *Service {
	return &Service{docs: docs, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the chunk size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Import validates ids and writes documents chunk by chunk.
// A failed chunk marks each of its documents failed; later chunks are still attempted.
func (s *Service) Import(ctx context.Context, collection string, items []domain.Document) []dombatch.Result {
	results := make([]dombatch.Result, len(items))
	seen := make(map[string]int, len(items))

	valid := make([]domain.Document, 0, len(items))
	validIdx := make([]int, 0, len(items))
	for i, item := range items {
		if item.ID == "" {
			results[i] = dombatch.NewError("", fmt.Errorf("document %d: %w: id is required", i, domain.ErrValidation))
			continue
		}
		if prev, dup := seen[item.ID]; dup {
			results[i] = dombatch.NewError(item.ID,
				fmt.Errorf("%w: duplicate id (first at %d)", domain.ErrValidation, prev))
			continue
		}
		seen[item.ID] = i
		valid = append(valid, item)
		validIdx = append(validIdx, i)
	}

	for start := 0; start < len(valid); start += s.maxBatchSize {
		if err := ctx.Err(); err != nil {
			for _, i := range validIdx[start:] {
				results[i] = dombatch.NewError(items[i].ID, err)
			}
			break
		}
		end := min(start+s.maxBatchSize, len(valid))

		err := s.docs.Put(ctx, collection, valid[start:end]...)
		for _, i := range validIdx[start:end] {
			if err != nil {
				results[i] = dombatch.NewError(items[i].ID, fmt.Errorf("put: %w", err))
			} else {
				results[i] = dombatch.NewOK(items[i].ID)
			}
		}
		if err != nil {
			logger.FromContext(ctx).Warn("Import chunk failed",
				zap.String("collection", collection),
				zap.Int("chunk_start", start),
				zap.Int("chunk_size", end-start),
				zap.Error(err),
			)
		}
	}
	return results
}
