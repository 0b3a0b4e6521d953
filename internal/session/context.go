package session

import "context"

type ctxKey struct{}

type scoped struct {
	key     string
	session Session
}

// WithSession stores the tab key and its session on the context.
func WithSession(ctx context.Context, key string, s Session) context.Context {
	if ctx == nil || key == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, scoped{key: key, session: s})
}

// FromContext returns the tab key and session stored by WithSession.
func FromContext(ctx context.Context) (string, Session, bool) {
	if ctx == nil {
		return "", Session{}, false
	}
	v, ok := ctx.Value(ctxKey{}).(scoped)
	if !ok {
		return "", Session{}, false
	}
	return v.key, v.session, true
}
