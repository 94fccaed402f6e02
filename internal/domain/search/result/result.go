package result

// Strategy names the scan path a search took.
type Strategy string

// Scan strategies.
const (
	Optimized Strategy = "optimized"
	Bounded   Strategy = "bounded"
)

// Page is the outcome of one search: normalized output documents in final order.
type Page struct {
	matches  []map[string]any
	strategy Strategy
	fallback bool
	scanned  int
}

// New creates a result page. A nil matches slice is replaced with an empty one.
func New(matches []map[string]any, strategy Strategy, fallback bool, scanned int) Page {
	if matches == nil {
		matches = []map[string]any{}
	}
	return Page{matches: matches, strategy: strategy, fallback: fallback, scanned: scanned}
}

// Matches returns the output documents.
func (p *Page) Matches() []map[string]any { return p.matches }

// Total returns the number of matches returned.
func (p *Page) Total() int { return len(p.matches) }

// Strategy returns the scan strategy that produced the candidates.
func (p *Page) Strategy() Strategy { return p.strategy }

// UsedFallback reports whether the fallback scan ran.
func (p *Page) UsedFallback() bool { return p.fallback }

// Scanned returns the number of candidate documents examined.
func (p *Page) Scanned() int { return p.scanned }
