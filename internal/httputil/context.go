package httputil

import (
	"context"
	"net/http"
)

type principalKey struct{}

// principal is shared by pointer so middleware wrapping the auth layer can
// still see who made the request after the handler returns
type principal struct {
	userID string
}

// TrackPrincipal installs an empty principal slot on the request
func TrackPrincipal(r *http.Request) *http.Request {
	if _, ok := r.Context().Value(principalKey{}).(*principal); ok {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), principalKey{}, &principal{}))
}

// WithUserID records the authenticated subject on the request
func WithUserID(r *http.Request, userID string) *http.Request {
	r = TrackPrincipal(r)
	r.Context().Value(principalKey{}).(*principal).userID = userID
	return r
}

// GetUserID returns the subject, or "" when auth is disabled
func GetUserID(r *http.Request) string {
	if p, ok := r.Context().Value(principalKey{}).(*principal); ok {
		return p.userID
	}
	return ""
}
