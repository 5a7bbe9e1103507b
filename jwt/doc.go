// Package jwt mints HS256 access and refresh tokens and verifies access
// tokens with a pinned algorithm allow-list.
//
// Access tokens are self-contained ({userId, iss, aud, iat, exp}). Refresh
// tokens carry only a random UUID: their authority comes from the session
// ledger, not from their claims, so this package never parses them.
package jwt
