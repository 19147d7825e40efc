package metrics

import (
	"context"

	"github.com/rzpsarthak13/relmap/internal/core"
)

// instrumentedExecutor wraps an executor and notifies every recorder of
// each statement before it runs.
type instrumentedExecutor struct {
	next      core.Executor
	recorders []Recorder
}

// Instrument wraps an executor so that each Query and Execute call is
// reported to the given recorders. With no recorders the executor is
// returned unwrapped.
func Instrument(next core.Executor, recorders ...Recorder) core.Executor {
	if len(recorders) == 0 {
		return next
	}
	return &instrumentedExecutor{
		next:      next,
		recorders: recorders,
	}
}

func (e *instrumentedExecutor) Query(ctx context.Context, sqlText string, params map[string]interface{}) (core.Rows, error) {
	e.record(ctx, sqlText)
	return e.next.Query(ctx, sqlText, params)
}

func (e *instrumentedExecutor) Execute(ctx context.Context, sqlText string, params map[string]interface{}) (core.Result, error) {
	e.record(ctx, sqlText)
	return e.next.Execute(ctx, sqlText, params)
}

func (e *instrumentedExecutor) Ping(ctx context.Context) error {
	return e.next.Ping(ctx)
}

func (e *instrumentedExecutor) Close() error {
	return e.next.Close()
}

func (e *instrumentedExecutor) record(ctx context.Context, sqlText string) {
	for _, r := range e.recorders {
		r.Record(ctx, sqlText)
	}
}
