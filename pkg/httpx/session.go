package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/diyageorge33/minipro/pkg/slogx"
)

// ErrNoSession is returned by a SessionResolver when the token does not map to
// a live session.
var ErrNoSession = errors.New("no active session")

// SessionResolver maps a raw session cookie value to the session id and the
// user it belongs to.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (sessionID, userID string, err error)
}

// SessionResolverFunc adapts a function to SessionResolver.
type SessionResolverFunc func(ctx context.Context, token string) (string, string, error)

func (f SessionResolverFunc) ResolveSession(ctx context.Context, token string) (string, string, error) {
	return f(ctx, token)
}

// SessionMiddleware resolves the session cookie, when present, and stores the
// session and user ids in the request context. Requests without a valid
// session pass through anonymously; use RequireSession or
// RequireSessionRedirect to guard a route.
func SessionMiddleware(resolver SessionResolver, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sessionID, userID, err := resolver.ResolveSession(ctx, c.Value)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					slogx.FromContext(ctx).Error("failed to resolve session", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, CtxKeySessionID, sessionID)
			ctx = context.WithValue(ctx, CtxKeyUserID, userID)
			ctx = slogx.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous requests with 401 {"message": ...}.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSessionRedirect sends anonymous requests to target with a 302,
// which suits pages opened directly in a browser.
func RequireSessionRedirect(target string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
