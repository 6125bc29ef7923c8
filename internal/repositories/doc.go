// Package repositories implements sqlite-backed persistence for the local
// video cache. The cache mirrors the backend collection so the library can
// be listed without a network round trip.
package repositories
