// Package telemetry records how long the stages of a run take (loading,
// parsing, processing and formatting) as a tree of timers.
//
// A Collector travels through a context.Context so that packages can be
// instrumented without changing their signatures:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("loader.load main.ledger")
//	defer timer.End()
//
//	collector.Report(os.Stderr, nil)
//
// Without a collector in the context, FromContext returns one that records
// nothing.
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/ledger-parser/output"
)

type contextKey struct{}

// Collector collects timers started during a run.
type Collector interface {
	// Start begins timing an operation. Timers started before it ends are
	// nested under it.
	Start(name string) Timer

	// Report writes the collected timers to w. Styles may be nil for plain output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a copy of ctx carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, collector)
}

// FromContext returns the collector carried by ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(contextKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
