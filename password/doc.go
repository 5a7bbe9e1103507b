// Package password verifies login passwords against stored hashes.
//
// [Comparer] accepts argon2id PHC strings
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
//
// and bcrypt hashes, so accounts migrated from a bcrypt-based system keep
// working. [Argon2] produces new argon2id hashes for seeding and tooling.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other authcore package.
//   - Log plaintext passwords.
package password
