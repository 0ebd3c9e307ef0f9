package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword(hash, "secret") {
		t.Fatal("expected password verification to succeed")
	}

	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected password verification to fail")
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	b, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if a == b {
		t.Fatal("expected tokens to differ")
	}
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	if err != nil {
		t.Fatalf("code error: %v", err)
	}

	if len(code) != 8 {
		t.Fatalf("expected 8 characters, got %d", len(code))
	}

	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '2' || r > '7') {
			t.Fatalf("unexpected character %q in code", r)
		}
	}
}
