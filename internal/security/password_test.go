package security

import (
	"strings"
	"testing"
)

func TestHashPassword_DistinctSaltsBothVerify(t *testing.T) {
	h1, err := HashPassword("s3cret-password")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	h2, err := HashPassword("s3cret-password")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("expected distinct hashes for the same plaintext, got identical: %s", h1)
	}

	if !CheckPassword(h1, "s3cret-password") {
		t.Errorf("first hash did not verify")
	}

	if !CheckPassword(h2, "s3cret-password") {
		t.Errorf("second hash did not verify")
	}
}

func TestHashPassword_EncodedForm(t *testing.T) {
	h, err := HashPassword("pw")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if !strings.HasPrefix(h, "$argon2id$") {
		t.Fatalf("unexpected hash prefix: %s", h)
	}

	if strings.Contains(h, "pw") {
		t.Fatalf("plaintext leaked into encoded hash: %s", h)
	}
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	h, err := HashPassword("correct horse")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if CheckPassword(h, "battery staple") {
		t.Errorf("wrong password verified")
	}
}

func TestCheckPassword_MalformedHashes(t *testing.T) {
	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{"bad version", "$argon2id$v=12$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{"bad params", "$argon2id$v=19$m=what$c2FsdA$a2V5"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5"},
		{"missing key", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if CheckPassword(tc.hash, "anything") {
				t.Errorf("malformed hash %q verified", tc.hash)
			}
		})
	}
}
