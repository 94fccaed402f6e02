package docsearch

import "github.com/kailas-cloud/docsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfiguration = domain.ErrConfiguration
	ErrValidation    = domain.ErrValidation
	ErrRateLimited   = domain.ErrRateLimited
	ErrStore         = domain.ErrStore
)
