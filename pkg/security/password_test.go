package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := testPasswordConfig

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := security.HashPassword("hunter22", testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if security.NeedsRehash(hash, testPasswordConfig) {
		t.Fatal("expected hash with current params to be fresh")
	}

	stronger := testPasswordConfig
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("expected changed time cost to require rehash")
	}
	if !security.NeedsRehash("garbage", testPasswordConfig) {
		t.Fatal("expected malformed hash to require rehash")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(16)
	if err != nil {
		t.Fatalf("GenerateTempPassword returned error: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 characters, got %d", len(pw))
	}
	if _, err := security.GenerateTempPassword(0); err == nil {
		t.Fatal("expected non-positive length to fail")
	}
}

func TestVerifyPasswordRejectsForeignVersions(t *testing.T) {
	hash, err := security.HashPassword("hunter22", testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	tampered := strings.Replace(hash, "$v=19$", "$v=16$", 1)
	if _, err := security.VerifyPassword("hunter22", tampered); !errors.Is(err, security.ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash for unknown version, got %v", err)
	}
	if _, err := security.VerifyPassword("hunter22", "$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5"); !errors.Is(err, security.ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash for zero memory, got %v", err)
	}
}

func TestGenerateTempPasswordAvoidsAmbiguousCharacters(t *testing.T) {
	pw, err := security.GenerateTempPassword(256)
	if err != nil {
		t.Fatalf("GenerateTempPassword returned error: %v", err)
	}
	if strings.ContainsAny(pw, "0O1lI") {
		t.Fatalf("expected no ambiguous characters, got %q", pw)
	}
}
