package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPBKDF2Roundtrip(t *testing.T) {
	descriptor, err := HashPBKDF2("correct-horse")
	if err != nil {
		t.Fatalf("HashPBKDF2 failed: %v", err)
	}
	if !strings.HasPrefix(descriptor, "$pbkdf2-sha512$i=") {
		t.Fatalf("unexpected descriptor prefix: %s", descriptor)
	}

	d, err := Parse(descriptor, false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Kind() != KindPBKDF2 {
		t.Fatalf("expected KindPBKDF2, got %v", d.Kind())
	}

	if !d.Verify("correct-horse") {
		t.Fatal("expected correct password to verify")
	}
	if d.Verify("correct-horsf") {
		t.Fatal("expected wrong password to fail")
	}
	if d.Verify("") {
		t.Fatal("expected empty password to fail")
	}
}

func TestParsePBKDF2BitFlip(t *testing.T) {
	descriptor, err := HashPBKDF2("correct-horse")
	if err != nil {
		t.Fatalf("HashPBKDF2 failed: %v", err)
	}

	// Flip one character in the digest segment. Either parsing rejects the
	// encoding or verification fails; the password must never verify.
	parts := strings.Split(descriptor, "$")
	digest := []byte(parts[4])
	if digest[0] == 'A' {
		digest[0] = 'B'
	} else {
		digest[0] = 'A'
	}
	parts[4] = string(digest)
	tampered := strings.Join(parts, "$")

	d, err := Parse(tampered, false)
	if err != nil {
		return
	}
	if d.Verify("correct-horse") {
		t.Fatal("tampered digest must not verify")
	}
}

func TestParsePBKDF2RejectsWeakParameters(t *testing.T) {
	cases := []struct {
		name       string
		descriptor string
	}{
		{"low iterations", "$pbkdf2-sha512$i=1000$AAAAAAAAAAAAAAAAAAAAAA$AAAA"},
		{"missing iterations", "$pbkdf2-sha512$AAAAAAAAAAAAAAAAAAAAAA$AAAA"},
		{"bad salt encoding", "$pbkdf2-sha512$i=100000$!!!$AAAA"},
		{"short salt", "$pbkdf2-sha512$i=100000$AAAA$AAAA"},
		{"empty digest", "$pbkdf2-sha512$i=100000$AAAAAAAAAAAAAAAAAAAAAA$"},
		{"wrong algorithm", "$pbkdf2-sha256$i=100000$AAAAAAAAAAAAAAAAAAAAAA$AAAA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.descriptor, false); err == nil {
				t.Fatalf("expected parse error for %q", tc.descriptor)
			}
		})
	}
}

func TestParseBcrypt(t *testing.T) {
	encoded, err := bcrypt.GenerateFromPassword([]byte("swordfish"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt generate failed: %v", err)
	}

	d, err := Parse(string(encoded), false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Kind() != KindBcrypt {
		t.Fatalf("expected KindBcrypt, got %v", d.Kind())
	}

	if !d.Verify("swordfish") {
		t.Fatal("expected correct password to verify")
	}
	if d.Verify("sardine") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestParseBcryptMalformed(t *testing.T) {
	if _, err := Parse("$2a$nonsense", false); err == nil {
		t.Fatal("expected error for malformed bcrypt descriptor")
	}
}

func TestParseCleartextGated(t *testing.T) {
	if _, err := Parse("plain:hunter2", false); !errors.Is(err, ErrCleartextForbidden) {
		t.Fatalf("expected ErrCleartextForbidden, got %v", err)
	}

	d, err := Parse("plain:hunter2", true)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Kind() != KindCleartext {
		t.Fatalf("expected KindCleartext, got %v", d.Kind())
	}
	if !d.Verify("hunter2") {
		t.Fatal("expected exact match to verify")
	}
	if d.Verify("hunter3") {
		t.Fatal("expected mismatch to fail")
	}
}

func TestParseCleartextEmptySecret(t *testing.T) {
	if _, err := Parse("plain:", true); err == nil {
		t.Fatal("expected error for empty cleartext secret")
	}
}

func TestParseUnknownFormat(t *testing.T) {
	for _, descriptor := range []string{"", "hunter2", "$argon2id$v=19$...", "md5:abc"} {
		if _, err := Parse(descriptor, true); !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("descriptor %q: expected ErrUnknownFormat, got %v", descriptor, err)
		}
	}
}

func TestVerifyNilDescriptor(t *testing.T) {
	var d *Descriptor
	if d.Verify("anything") {
		t.Fatal("nil descriptor must fail closed")
	}
}
