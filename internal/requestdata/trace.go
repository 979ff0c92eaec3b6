package requestdata

import "context"

type traceDataKeyType struct{}

var traceDataKey = traceDataKeyType{}

// TraceData carries correlation ids minted (or propagated) at the edge.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey).(*TraceData); ok {
		return td
	}
	return nil
}
