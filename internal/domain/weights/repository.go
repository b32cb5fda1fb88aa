package weights

import "context"

type Repository interface {
	Get(ctx context.Context) (Config, error)
	// Replace persists the new configuration with a bumped version and
	// returns the stored row.
	Replace(ctx context.Context, cfg Config) (Config, error)
}
