// Package flows contains the orchestration functions behind every Engine
// operation.
//
// Each flow (RunAuthenticate, RunRecordFailure, RunIssue, RunVerify,
// RunRevoke, RunLogout, RunRefresh) accepts a typed dependency struct built
// once by the root package. Flows return either root-level errors supplied
// through the dependency struct or a classified result that the root maps to
// its own sentinels.
//
// # Architecture boundaries
//
// Flows coordinate the credential store, the password comparer, the lockout
// counter, the token manager, the session ledger and the blacklist. They do
// NOT own any of these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authcore (to avoid import cycles).
//   - Perform I/O directly. All I/O goes through dependency functions.
package flows
