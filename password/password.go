package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Kind discriminates the credential descriptor variants.
type Kind uint8

const (
	// KindCleartext stores the secret verbatim. Bootstrap-only; parsing it
	// must be explicitly allowed and is refused in production configurations.
	KindCleartext Kind = iota
	// KindPBKDF2 stores a salted PBKDF2-SHA512 digest.
	KindPBKDF2
	// KindBcrypt delegates to the bcrypt verifier ($2a/$2b/$2y encodings).
	KindBcrypt
)

const (
	cleartextPrefix = "plain:"
	pbkdf2Algorithm = "pbkdf2-sha512"

	// PBKDF2Iterations is the iteration count used for newly minted
	// descriptors and the minimum accepted when parsing stored ones.
	PBKDF2Iterations = 100000
	pbkdf2KeyLength  = 64
	pbkdf2SaltLength = 16
)

var (
	// ErrUnknownFormat indicates a descriptor string no variant recognizes.
	ErrUnknownFormat = errors.New("unknown credential descriptor format")
	// ErrCleartextForbidden indicates a plain: descriptor in a configuration
	// that has not opted into cleartext credentials.
	ErrCleartextForbidden = errors.New("cleartext credential descriptor not allowed")
)

// Descriptor is an immutable, parsed admin credential. Each variant carries
// only the fields it needs.
type Descriptor struct {
	kind Kind

	secret string // cleartext

	iterations int
	salt       []byte
	digest     []byte

	encoded string // bcrypt
}

// Kind reports the descriptor variant.
func (d *Descriptor) Kind() Kind {
	return d.kind
}

// Parse converts a stored descriptor string into its typed form. Format
// errors surface here, at configuration load, so that a bad descriptor fails
// startup instead of silently failing every login.
func Parse(descriptor string, allowCleartext bool) (*Descriptor, error) {
	switch {
	case strings.HasPrefix(descriptor, cleartextPrefix):
		if !allowCleartext {
			return nil, ErrCleartextForbidden
		}
		secret := strings.TrimPrefix(descriptor, cleartextPrefix)
		if secret == "" {
			return nil, errors.New("empty cleartext secret")
		}
		return &Descriptor{kind: KindCleartext, secret: secret}, nil

	case strings.HasPrefix(descriptor, "$"+pbkdf2Algorithm+"$"):
		return parsePBKDF2(descriptor)

	case strings.HasPrefix(descriptor, "$2a$"),
		strings.HasPrefix(descriptor, "$2b$"),
		strings.HasPrefix(descriptor, "$2y$"):
		if _, err := bcrypt.Cost([]byte(descriptor)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt descriptor: %w", err)
		}
		return &Descriptor{kind: KindBcrypt, encoded: descriptor}, nil
	}

	return nil, ErrUnknownFormat
}

// Verify checks a presented password against the descriptor. It never returns
// an error: every failure mode, including internal ones, reads as a mismatch.
// Credential checks fail closed.
func (d *Descriptor) Verify(presented string) bool {
	if d == nil || presented == "" {
		return false
	}

	switch d.kind {
	case KindCleartext:
		// Plain equality. Acceptable only because this variant is gated to
		// non-production bootstrap configurations.
		return presented == d.secret

	case KindPBKDF2:
		derived := pbkdf2.Key([]byte(presented), d.salt, d.iterations, len(d.digest), sha512.New)
		// Constant-time XOR-accumulate comparison; a length mismatch fails
		// without deriving anything useful for a timing oracle on the digest.
		if len(derived) != len(d.digest) {
			return false
		}
		return subtle.ConstantTimeCompare(derived, d.digest) == 1

	case KindBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(d.encoded), []byte(presented)) == nil
	}

	return false
}

// HashPBKDF2 mints a fresh descriptor string for a password, for operator
// tooling that provisions the admin credential.
func HashPBKDF2(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}

	salt := make([]byte, pbkdf2SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	digest := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, pbkdf2KeyLength, sha512.New)

	return fmt.Sprintf(
		"$%s$i=%d$%s$%s",
		pbkdf2Algorithm,
		PBKDF2Iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

func parsePBKDF2(descriptor string) (*Descriptor, error) {
	parts := strings.Split(descriptor, "$")
	if len(parts) != 5 || parts[0] != "" {
		return nil, errors.New("invalid pbkdf2 descriptor format")
	}
	if parts[1] != pbkdf2Algorithm {
		return nil, errors.New("unsupported pbkdf2 algorithm")
	}

	if !strings.HasPrefix(parts[2], "i=") {
		return nil, errors.New("missing pbkdf2 iteration count")
	}
	iterations, err := strconv.Atoi(strings.TrimPrefix(parts[2], "i="))
	if err != nil || iterations < PBKDF2Iterations {
		return nil, errors.New("invalid pbkdf2 iteration count")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, errors.New("invalid pbkdf2 salt encoding")
	}
	if len(salt) < pbkdf2SaltLength {
		return nil, errors.New("invalid pbkdf2 salt length")
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid pbkdf2 digest encoding")
	}
	if len(digest) == 0 {
		return nil, errors.New("invalid pbkdf2 digest length")
	}

	return &Descriptor{
		kind:       KindPBKDF2,
		iterations: iterations,
		salt:       salt,
		digest:     digest,
	}, nil
}
