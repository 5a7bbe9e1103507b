// Package session provides the Redis-backed session ledger: one hash per user
// holding the currently valid refresh token plus the client IP and user agent
// it was issued to.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Session] model. It does NOT parse
// tokens or decide whether a refresh token is acceptable; the verifier in
// internal/flows compares the stored token against the presented one.
//
// # What this package must NOT do
//
//   - Import authcore or jwt (no upward imports).
//   - Keep more than one record per user: Save is revoke-and-replace.
package session
