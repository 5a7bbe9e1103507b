// Package middleware adapts authcore access-token verification to net/http.
//
// # Guards
//
//   - [Guard]: signature and expiry check plus a blacklist lookup.
//   - [RequireJWTOnly]: signature and expiry only, no ledger call.
//
// Both read the Authorization bearer token and store the user id in the
// request context ([UserID]). Expired tokens get 401 "token expired",
// invalid or revoked tokens 401 "unauthorized", and ledger failures 503.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly.
//   - Access Redis.
package middleware
