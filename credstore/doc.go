// Package credstore implements authcore.CredentialStore on PostgreSQL with
// pgx.
//
// Users live in a users table; blocks are rows in user_blocks carrying a
// reason id. A user counts as blocked while any block row with a reason
// other than ACTIVE (1) exists.
package credstore
