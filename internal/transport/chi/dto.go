package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeConfigurationError ErrorCode = "configuration_error"
	ErrorCodeRateLimited        ErrorCode = "rate_limited"
	ErrorCodeStoreUnavailable   ErrorCode = "store_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the GET /search query parameters. Q is an alias for SearchValue.
type SearchParams struct {
	SearchValue   *string
	Q             *string
	Limit         *int
	CaseSensitive *bool
	SortBy        *string
	Direction     *string
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	SearchValue   string `json:"searchValue"`
	Limit         int    `json:"limit,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	Direction     string `json:"direction,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Matches      []map[string]any `json:"matches"`
	TotalResults int              `json:"totalResults"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (p SearchParams) toRequest() SearchRequest {
	req := SearchRequest{
		SearchValue:   deref(p.SearchValue),
		Limit:         deref(p.Limit),
		CaseSensitive: deref(p.CaseSensitive),
		SortBy:        deref(p.SortBy),
		Direction:     deref(p.Direction),
	}
	if req.SearchValue == "" {
		req.SearchValue = deref(p.Q)
	}
	return req
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
