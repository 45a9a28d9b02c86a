package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies the request a piece of work belongs to.
type TraceData struct {
	TraceID   string
	RequestID string
	Actor     string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the non-empty identifiers as logger key/value pairs. Safe on nil.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	var out []interface{}
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.Actor != "" {
		out = append(out, "actor", td.Actor)
	}
	return out
}
