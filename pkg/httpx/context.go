package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeySessionID ctxKey = "session_id"
)

// UserIDFromContext returns the user bound to the request's session, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// SessionIDFromContext returns the id of the session resolved for the request.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeySessionID).(string)
	return v, ok && v != ""
}
