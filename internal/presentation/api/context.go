package api

import "context"

type ctxKey int

const (
	bodyKey ctxKey = iota
	requestIDKey
)

const RequestIDHeader = "X-Request-ID"

func withBody(ctx context.Context, body any) context.Context {
	return context.WithValue(ctx, bodyKey, body)
}

// BodyFrom returns the JSON body decoded by the pipeline. ok is false when
// the request carried no JSON body.
func BodyFrom(ctx context.Context) (body any, ok bool) {
	body = ctx.Value(bodyKey)
	return body, body != nil
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
