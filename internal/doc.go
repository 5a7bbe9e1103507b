// Package internal groups implementation packages that are private to
// authcore.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: flow orchestrators for every Engine operation
//   - limiters: the failed-login lockout counter
//   - logging: slog setup with trace correlation and oops-aware error logging
//   - stores: the access-token blacklist
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
