package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/fieldpath"
	"github.com/kailas-cloud/docsearch/internal/domain/normalize"
	"github.com/kailas-cloud/docsearch/internal/domain/search/match"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
	"github.com/kailas-cloud/docsearch/internal/domain/search/sorter"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Scan sizing.
const (
	// MinOptimizedLength is the shortest search value (in runes) that may use a prefix range scan.
	MinOptimizedLength = 3
	OptimizedFactor    = 2
	BoundedFactor      = 5
	BoundedCap         = 500
	FallbackFactor     = 3
	FallbackCap        = 100
)

// Config is the per-deployment search configuration.
type Config struct {
	Collection       string
	SearchableFields []string
	// ReturnFields restricts output documents to id plus these dot-paths. Empty means all fields.
	ReturnFields  []string
	FuzzyEnabled  bool
	TypoTolerance int
}

// Service plans and executes searches over a document source.
type Service struct {
	src Source
	cfg Config
}

// New creates a search service.
func New(src Source, cfg Config) *Service {
	return &Service{src: src, cfg: cfg}
}

// rangeOutcome is the result of a prefix range scan: documents, or the store failure
// that sends the planner to a bounded scan.
type rangeOutcome struct {
	docs    []domain.Document
	failure error
}

func (o rangeOutcome) ok() bool { return o.failure == nil }

// Search runs one search: select a strategy, filter candidates, run the fallback scan
// when a successful prefix scan found nothing, then sort, project and normalize.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	if len(s.cfg.SearchableFields) == 0 {
		return result.Page{}, fmt.Errorf("%w: no searchable fields configured", domain.ErrConfiguration)
	}

	limit := req.Limit()
	policy := match.Policy{
		CaseSensitive: req.CaseSensitive(),
		Fuzzy:         s.cfg.FuzzyEnabled,
		TypoTolerance: s.cfg.TypoTolerance,
	}

	strategy := result.Bounded
	var candidates []domain.Document
	if s.optimizable(req) {
		outcome := s.optimizedScan(ctx, req)
		if outcome.ok() {
			strategy = result.Optimized
			candidates = outcome.docs
		} else {
			logger.FromContext(ctx).Warn("Optimized scan failed, downgrading to bounded scan",
				zap.String("collection", s.cfg.Collection),
				zap.String("field", s.cfg.SearchableFields[0]),
				zap.Error(outcome.failure),
			)
			metrics.OptimizedScanFailuresTotal.Inc()
		}
	}
	if strategy == result.Bounded {
		docs, err := s.src.Scan(ctx, s.cfg.Collection, scan.Query{Limit: min(limit*BoundedFactor, BoundedCap)})
		if err != nil {
			return result.Page{}, domain.NewStoreError("bounded scan", err)
		}
		candidates = docs
	}

	scanned := len(candidates)
	matched := s.filter(candidates, req.SearchValue(), policy, limit)

	fallback := false
	if strategy == result.Optimized && len(matched) == 0 {
		docs, err := s.src.Scan(ctx, s.cfg.Collection, scan.Query{Limit: min(limit*FallbackFactor, FallbackCap)})
		if err != nil {
			return result.Page{}, domain.NewStoreError("fallback scan", err)
		}
		fallback = true
		scanned += len(docs)
		matched = s.filter(docs, req.SearchValue(), policy, limit)
	}

	if req.SortBy() != "" {
		path := req.SortBy()
		sorter.Stable(matched, func(d domain.Document) any {
			return fieldpath.Get(d.Fields, path)
		}, req.Direction())
	}

	out := make([]map[string]any, 0, len(matched))
	for _, d := range matched {
		out = append(out, normalize.Document(s.project(d)))
	}
	return result.New(out, strategy, fallback, scanned), nil
}

// optimizable reports whether a byte-exact prefix range can bound the match set.
// Case folding and typo tolerance both escape such a range.
func (s *Service) optimizable(req *request.Request) bool {
	return !s.cfg.FuzzyEnabled &&
		req.CaseSensitive() &&
		utf8.RuneCountInString(req.SearchValue()) >= MinOptimizedLength
}

func (s *Service) optimizedScan(ctx context.Context, req *request.Request) rangeOutcome {
	var hint *scan.SortHint
	if req.SortBy() != "" {
		hint = &scan.SortHint{Field: req.SortBy(), Direction: req.Direction()}
	}
	r := scan.Prefix(s.cfg.SearchableFields[0], req.SearchValue(), req.Limit()*OptimizedFactor, hint)
	docs, err := s.src.RangeScan(ctx, s.cfg.Collection, r)
	if err != nil {
		return rangeOutcome{failure: domain.NewStoreError("range scan", err)}
	}
	return rangeOutcome{docs: docs}
}

// filter keeps documents whose searchable fields match, stopping at limit.
func (s *Service) filter(docs []domain.Document, term string, policy match.Policy, limit int) []domain.Document {
	matched := make([]domain.Document, 0, min(len(docs), limit))
	for _, d := range docs {
		if len(matched) >= limit {
			break
		}
		if s.matches(d, term, policy) {
			matched = append(matched, d)
		}
	}
	return matched
}

func (s *Service) matches(d domain.Document, term string, policy match.Policy) bool {
	for _, f := range s.cfg.SearchableFields {
		text, ok := searchableText(fieldpath.Get(d.Fields, f))
		if ok && policy.Matches(term, text) {
			return true
		}
	}
	return false
}

// searchableText renders scalar field values as text. Nested values are not searched.
func searchableText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	}
	if n, ok := domain.AsNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// project builds the output document from raw values. The document id always wins
// over a stored field named "id".
func (s *Service) project(d domain.Document) map[string]any {
	if len(s.cfg.ReturnFields) == 0 {
		out := make(map[string]any, len(d.Fields)+1)
		for k, v := range d.Fields {
			out[k] = v
		}
		out["id"] = d.ID
		return out
	}
	out := make(map[string]any, len(s.cfg.ReturnFields)+1)
	for _, path := range s.cfg.ReturnFields {
		fieldpath.Set(out, path, fieldpath.Get(d.Fields, path))
	}
	out["id"] = d.ID
	return out
}
