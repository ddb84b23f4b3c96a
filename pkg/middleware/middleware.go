package middleware

import "net/http"

// RouteMiddleware wraps a single route handler.
type RouteMiddleware interface {
	Verify(next http.HandlerFunc) http.HandlerFunc
}
