// Package authcore authenticates users and manages the lifecycle of their
// sessions: login with a lockout policy, access/refresh token issuance,
// two-branch token verification, revocation and logout.
//
// Engine methods are safe to call from multiple goroutines once the engine
// has been produced by [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the error sentinels and value types. Flow orchestration, the session
// ledger, the blacklist, the lockout counter and audit dispatch live under
// internal/ or in small leaf packages (jwt, session, password).
//
// All ephemeral state lives in one Redis-compatible TTL store:
//
//	session:<userID>              hash   userId, refreshToken, ip, userAgent   TTL = refresh lifetime
//	blacklist:<userID>            hash   accessToken, time                     TTL = access lifetime
//	failedLoginAttempts:<userID>  string integer                                no TTL
//
// Each key is optionally prefixed with Config.Session.KeyPrefix.
//
// # What this package must NOT do
//
//   - Expose Redis clients or internal stores in its public API.
//   - Perform I/O outside of Engine methods.
//   - Log tokens, passwords or password hashes.
//
// # Verification
//
// Access tokens are verified by signature and expiry only, without a ledger
// round trip; callers that need revocation check [Engine.IsRevoked]
// separately (the middleware package does both). Refresh tokens are verified
// by exact match against the session recorded for the user, so issuing a new
// pair or logging out invalidates the previous refresh token at once.
package authcore
