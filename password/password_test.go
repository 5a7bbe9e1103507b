package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func fastConfig() Config {
	return Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgon2HashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}

	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	if ok, err := hasher.Verify("correct-horse", hash); err != nil || !ok {
		t.Fatalf("expected match, got %v err=%v", ok, err)
	}
	if ok, err := hasher.Verify("wrong-horse!", hash); err != nil || ok {
		t.Fatalf("expected mismatch, got %v err=%v", ok, err)
	}
}

func TestArgon2SaltsDiffer(t *testing.T) {
	hasher, _ := NewArgon2(fastConfig())
	a, _ := hasher.Hash("same-password")
	b, _ := hasher.Hash("same-password")
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	weak := fastConfig()
	weak.Memory = 1024
	if _, err := NewArgon2(weak); err == nil {
		t.Fatal("expected weak memory to be rejected")
	}
	weak = fastConfig()
	weak.SaltLength = 8
	if _, err := NewArgon2(weak); err == nil {
		t.Fatal("expected short salt to be rejected")
	}
}

func TestArgon2HashRejectsShortPassword(t *testing.T) {
	hasher, _ := NewArgon2(fastConfig())
	if _, err := hasher.Hash("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestComparerArgon2(t *testing.T) {
	hasher, _ := NewArgon2(fastConfig())
	hash, _ := hasher.Hash("correct-horse")

	c := NewComparer()
	if ok, err := c.Compare("correct-horse", hash); err != nil || !ok {
		t.Fatalf("expected match, got %v err=%v", ok, err)
	}
	if ok, err := c.Compare("nope-nope-nope", hash); err != nil || ok {
		t.Fatalf("expected mismatch, got %v err=%v", ok, err)
	}
}

func TestComparerBcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	c := NewComparer()
	if ok, err := c.Compare("legacy-pass", string(raw)); err != nil || !ok {
		t.Fatalf("expected bcrypt match, got %v err=%v", ok, err)
	}
	if ok, err := c.Compare("other", string(raw)); err != nil || ok {
		t.Fatalf("expected bcrypt mismatch, got %v err=%v", ok, err)
	}
}

func TestComparerMalformed(t *testing.T) {
	c := NewComparer()
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=8192,t=1,p=1$%%%$abc",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=16,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$2b$10$short",
	}
	for _, hash := range cases {
		if _, err := c.Compare("pw", hash); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("expected ErrMalformedHash for %q, got %v", hash, err)
		}
	}
}
