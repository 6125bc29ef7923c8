// Package api implements the HTTP client for the clip backend. Every request
// carries the active bearer credential, honors the configured rate limit, and
// maps backend failures onto the shared error taxonomy. A 401 response
// invalidates the credential once and is never retried.
package api
