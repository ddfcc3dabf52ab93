package worker

import "context"

// Worker is a long-running background worker owned by a module. Run blocks
// until the worker stops or the context is canceled.
type Worker interface {
	Run(ctx context.Context) error
	Shutdown() error
}
