// Package limiters provides the failed-login lockout counter.
//
// [LockoutLimiter] keeps one integer per user at
// "<namespace>failedLoginAttempts:<userID>". The counter has no TTL and is
// cleared only by [LockoutLimiter.Reset] after a successful login.
//
// Each failure is recorded by a single Lua script that reads, decides and
// increments in one step, so concurrent failures are counted exactly once
// each.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package.
//   - Make policy decisions beyond counting. Blocking the account is the
//     caller's job.
package limiters
