package user

import "testing"

func TestValidateUsername(t *testing.T) {
	ok := []string{"alice", "alice_01", "a12", "john-doe", "alice.dev"}
	for _, v := range ok {
		if err := ValidateUsername(v); err != nil {
			t.Fatalf("expected valid username %q: %v", v, err)
		}
	}
	bad := []string{"", "ab", "has space", "a*b", strings51()}
	for _, v := range bad {
		if err := ValidateUsername(v); err == nil {
			t.Fatalf("expected invalid username %q", v)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("alice@example.com"); err != nil {
		t.Fatalf("expected valid email: %v", err)
	}
	for _, v := range []string{"", "alice", "alice@", "@example.com", "a b@example.com"} {
		if err := ValidateEmail(v); err == nil {
			t.Fatalf("expected invalid email %q", v)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("expected valid password: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct horse battery") {
		t.Fatal("expected hash to verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("expected mismatch to fail")
	}
	if VerifyPassword("", "anything") {
		t.Fatal("expected empty hash to fail")
	}
}

func strings51() string {
	s := ""
	for i := 0; i < 51; i++ {
		s += "a"
	}
	return s
}
