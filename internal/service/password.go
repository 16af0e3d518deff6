package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// PasswordHasher turns plaintext passwords into self-describing salted hashes
// and checks plaintext against them. Verify reports false for malformed
// hashes instead of failing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(encoded, plaintext string) bool
}

// BcryptHasher hashes with bcrypt. The salt is embedded in the $2a$ string.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(encoded, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
}

const (
	werkzeugSaltChars       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	werkzeugSaltLength      = 8
	werkzeugPBKDF2Iter      = 600000
	werkzeugScryptN         = 1 << 15
	werkzeugScryptR         = 8
	werkzeugScryptP         = 1
	werkzeugScryptKeyLength = 64
)

var errMalformedHash = errors.New("malformed password hash")

// WerkzeugHasher reads and writes the "method$salt$hexdigest" strings used by
// werkzeug.security, so accounts created by the Flask deployment keep working.
// New hashes use pbkdf2:sha256.
type WerkzeugHasher struct {
	Iterations int
	SaltLength int
}

// NewWerkzeugHasher creates a WerkzeugHasher with werkzeug's defaults and an
// 8 character salt.
func NewWerkzeugHasher() *WerkzeugHasher {
	return &WerkzeugHasher{Iterations: werkzeugPBKDF2Iter, SaltLength: werkzeugSaltLength}
}

func (h *WerkzeugHasher) Hash(plaintext string) (string, error) {
	saltLen := h.SaltLength
	if saltLen < werkzeugSaltLength {
		saltLen = werkzeugSaltLength
	}
	salt, err := randomSalt(saltLen)
	if err != nil {
		return "", err
	}
	iter := h.Iterations
	if iter <= 0 {
		iter = werkzeugPBKDF2Iter
	}
	digest := pbkdf2.Key([]byte(plaintext), []byte(salt), iter, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iter, salt, hex.EncodeToString(digest)), nil
}

func (h *WerkzeugHasher) Verify(encoded, plaintext string) bool {
	method, salt, want, ok := splitWerkzeug(encoded)
	if !ok {
		return false
	}
	got, err := werkzeugDigest(method, salt, plaintext)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(got)), []byte(want)) == 1
}

func splitWerkzeug(encoded string) (method, salt, digest string, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func werkzeugDigest(method, salt, plaintext string) ([]byte, error) {
	args := strings.Split(method, ":")
	switch args[0] {
	case "pbkdf2":
		if len(args) < 2 {
			return nil, errMalformedHash
		}
		var newHash func() hash.Hash
		var size int
		switch args[1] {
		case "sha256":
			newHash, size = sha256.New, sha256.Size
		case "sha512":
			newHash, size = sha512.New, sha512.Size
		default:
			return nil, errMalformedHash
		}
		iter := werkzeugPBKDF2Iter
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n <= 0 {
				return nil, errMalformedHash
			}
			iter = n
		}
		if len(args) > 3 {
			return nil, errMalformedHash
		}
		return pbkdf2.Key([]byte(plaintext), []byte(salt), iter, size, newHash), nil

	case "scrypt":
		n, r, p := werkzeugScryptN, werkzeugScryptR, werkzeugScryptP
		if len(args) != 1 && len(args) != 4 {
			return nil, errMalformedHash
		}
		if len(args) == 4 {
			var err error
			if n, err = strconv.Atoi(args[1]); err != nil {
				return nil, errMalformedHash
			}
			if r, err = strconv.Atoi(args[2]); err != nil {
				return nil, errMalformedHash
			}
			if p, err = strconv.Atoi(args[3]); err != nil {
				return nil, errMalformedHash
			}
		}
		return scrypt.Key([]byte(plaintext), []byte(salt), n, r, p, werkzeugScryptKeyLength)

	default:
		return nil, errMalformedHash
	}
}

func randomSalt(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	limit := big.NewInt(int64(len(werkzeugSaltChars)))
	for range length {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		b.WriteByte(werkzeugSaltChars[n.Int64()])
	}
	return b.String(), nil
}

// MultiHasher hashes with Primary and verifies any scheme it recognises.
type MultiHasher struct {
	Primary  PasswordHasher
	bcrypt   *BcryptHasher
	werkzeug *WerkzeugHasher
}

// NewMultiHasher wraps primary so that bcrypt and werkzeug hashes both verify.
func NewMultiHasher(primary PasswordHasher) *MultiHasher {
	return &MultiHasher{
		Primary:  primary,
		bcrypt:   &BcryptHasher{},
		werkzeug: NewWerkzeugHasher(),
	}
}

func (h *MultiHasher) Hash(plaintext string) (string, error) {
	return h.Primary.Hash(plaintext)
}

func (h *MultiHasher) Verify(encoded, plaintext string) bool {
	switch {
	case strings.HasPrefix(encoded, "$2"):
		return h.bcrypt.Verify(encoded, plaintext)
	case strings.HasPrefix(encoded, "pbkdf2:"),
		strings.HasPrefix(encoded, "scrypt:"), strings.HasPrefix(encoded, "scrypt$"):
		return h.werkzeug.Verify(encoded, plaintext)
	default:
		return false
	}
}
