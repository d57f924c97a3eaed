package credentials

import (
	"strings"
	"testing"
)

func TestGenerateID_LengthAndUniqueness(t *testing.T) {
	a, err := GenerateID(12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateID(12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 12 bytes -> 16 chars base64 sem padding
	if len(a) != 16 {
		t.Fatalf("expected 16 chars, got %d (%q)", len(a), a)
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if strings.ContainsAny(a, "+/=") {
		t.Fatalf("expected URL-safe alphabet, got %q", a)
	}
}

func TestNewToken_Shape(t *testing.T) {
	tok, err := NewToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d (%q)", len(parts), tok)
	}
	if parts[0] != "user-123" {
		t.Fatalf("expected user id prefix, got %q", parts[0])
	}
	// 32 bytes de nonce -> 43 chars base64 sem padding
	if len(parts[2]) != 43 {
		t.Fatalf("expected 43-char nonce segment, got %d", len(parts[2]))
	}

	other, err := NewToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok == other {
		t.Fatalf("expected distinct tokens for the same user")
	}
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("expected PHC argon2id format, got %q", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestPasswordHash_SaltsDiffer(t *testing.T) {
	h1, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected different salts to produce different hashes")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-phc-string"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
	if _, err := VerifyPassword("pw", "$bcrypt$whatever$x$y$z"); err == nil {
		t.Fatalf("expected error for foreign hash format")
	}
}
