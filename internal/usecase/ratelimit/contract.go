package ratelimit

import (
	"context"

	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Admit(ctx context.Context, key string) (domrl.Decision, error)
}
