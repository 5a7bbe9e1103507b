package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Comparer checks plaintext passwords against stored hashes in either
// argon2id PHC or bcrypt ($2a$, $2b$, $2y$) format.
type Comparer struct{}

// NewComparer returns a Comparer.
func NewComparer() Comparer {
	return Comparer{}
}

// Compare reports whether plain matches hash. A mismatch returns (false,
// nil); an unrecognised or corrupt hash returns an error.
func (Comparer) Compare(plain, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, argon2Prefix):
		return verifyArgon2(plain, hash)
	case isBcrypt(hash):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, errors.Join(ErrMalformedHash, err)
	default:
		return false, ErrMalformedHash
	}
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
