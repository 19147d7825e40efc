package metrics

import (
	"context"
	"sync/atomic"
)

// Recorder observes every statement the executor runs. Implementations
// must be safe for concurrent use and must never fail the statement that
// triggered them.
type Recorder interface {
	Record(ctx context.Context, sqlText string)
}

// Counter counts executed statements.
type Counter struct {
	count atomic.Int64
}

// NewCounter creates a new statement counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Record increments the statement count.
func (c *Counter) Record(ctx context.Context, sqlText string) {
	c.count.Add(1)
}

// Count returns the number of statements recorded so far.
func (c *Counter) Count() int64 {
	return c.count.Load()
}
