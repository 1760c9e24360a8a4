package store

import "context"

// HealthStore reports whether the backing database is reachable.
type HealthStore interface {
	CheckConnectivity(ctx context.Context) error
}
