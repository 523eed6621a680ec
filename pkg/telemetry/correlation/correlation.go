// Package correlation tags a context with the id of the unit of work that
// produced it: an HTTP request or a reminder job run.
package correlation

import "context"

// Source names where a correlation id came from.
type Source string

const (
	SourceHTTP     Source = "http"
	SourceReminder Source = "reminder"
)

type origin struct {
	source Source
	id     string
}

type originKey struct{}

// With stores id as the correlation id of ctx. Blank ids leave ctx unchanged.
func With(ctx context.Context, source Source, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, origin{source: source, id: id})
}

// ID returns the correlation id of ctx, or "" when none was set.
func ID(ctx context.Context) string {
	o, _ := lookup(ctx)
	return o.id
}

// SourceOf reports which kind of work set the correlation id.
func SourceOf(ctx context.Context) Source {
	o, _ := lookup(ctx)
	return o.source
}

func lookup(ctx context.Context) (origin, bool) {
	if ctx == nil {
		return origin{}, false
	}
	o, ok := ctx.Value(originKey{}).(origin)
	return o, ok
}
