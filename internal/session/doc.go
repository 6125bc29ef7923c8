// Package session manages the authenticated backend credential: obtaining it
// through password or federated sign-in, persisting it between runs, and
// invalidating it exactly once when the backend stops accepting it.
package session
