// Package stores provides Redis-backed records for token revocation.
//
// [Blacklist] keeps a single slot per user: the most recently revoked access
// token and the time it was revoked, stored as a hash at
// "<namespace>blacklist:<userID>" with a TTL equal to the access-token
// lifetime. Revoking again overwrites the slot, so only the latest revoked
// token is remembered.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package.
//   - Use non-constant-time comparisons for token matching.
package stores
