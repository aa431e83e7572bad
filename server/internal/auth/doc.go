// Package auth provides authentication middleware for nodepulse-server.
//
// APIKeyMiddleware(mode, header, key) wraps an http.Handler and validates the
// API key from the named HTTP header using a constant-time comparison.
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// local development with auth disabled). When the key is incorrect or absent,
// the middleware responds 401 immediately.
package auth
