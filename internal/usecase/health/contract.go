package health

import "context"

// Pinger checks availability of one dependency (document store, rate limit store).
type Pinger interface {
	Ping(ctx context.Context) error
}
