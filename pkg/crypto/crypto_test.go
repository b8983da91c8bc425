package crypto

import "testing"

func TestHashPasswordDeterministic(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}

	h1, err := HashPassword("hunter2", salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("hunter2", salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 != h2 {
		t.Errorf("same password and salt produced different hashes")
	}
}

func TestHashPasswordSaltDependent(t *testing.T) {
	s1, _ := GenerateSalt()
	s2, _ := GenerateSalt()
	if s1 == s2 {
		t.Fatalf("GenerateSalt returned identical salts")
	}

	h1, _ := HashPassword("hunter2", s1)
	h2, _ := HashPassword("hunter2", s2)
	if h1 == h2 {
		t.Errorf("different salts produced identical hashes")
	}
}

func TestVerify(t *testing.T) {
	salt, _ := GenerateSalt()
	hash, _ := HashPassword("correct-horse", salt)

	if !Verify("correct-horse", salt, hash) {
		t.Errorf("Verify rejected the correct password")
	}
	if Verify("wrong-horse", salt, hash) {
		t.Errorf("Verify accepted a wrong password")
	}
	if Verify("correct-horse", "not-hex!", hash) {
		t.Errorf("Verify accepted a malformed salt")
	}
}
