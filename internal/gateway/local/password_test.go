package local

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	params := Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	hash, err := HashPassword("correct horse", params)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash encoding: %s", hash)
	}

	t.Run("accepts the original password", func(t *testing.T) {
		if err := VerifyPassword(hash, "correct horse"); err != nil {
			t.Fatalf("VerifyPassword returned error: %v", err)
		}
	})

	t.Run("rejects a different password", func(t *testing.T) {
		if err := VerifyPassword(hash, "wrong horse"); err == nil {
			t.Fatalf("expected mismatch")
		}
	})

	t.Run("salts every hash", func(t *testing.T) {
		other, err := HashPassword("correct horse", params)
		if err != nil {
			t.Fatalf("HashPassword returned error: %v", err)
		}
		if other == hash {
			t.Fatalf("two hashes of one password must differ")
		}
	})

	t.Run("rejects malformed encodings", func(t *testing.T) {
		for _, encoded := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$c2FsdA$aGFzaA"} {
			if err := VerifyPassword(encoded, "x"); !errors.Is(err, ErrInvalidPasswordHash) {
				t.Fatalf("expected ErrInvalidPasswordHash for %q, got %v", encoded, err)
			}
		}
		if err := VerifyPassword("$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA", "x"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
			t.Fatalf("expected ErrIncompatiblePasswordVersion, got %v", err)
		}
	})
}
