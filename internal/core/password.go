// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

// PasswordParams are the argon2id costs. They are encoded into every hash so
// stored hashes stay verifiable after the defaults change.
type PasswordParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultPasswordParams = PasswordParams{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

func HashPassword(password string) (string, error) {
	return DefaultPasswordParams.Hash(password)
}

// Hash returns a PHC-style string:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
func (p PasswordParams) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	h := passwordHash{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen),
	}
	return h.String(), nil
}

type passwordHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		enc.EncodeToString(h.salt),
		enc.EncodeToString(h.key),
	)
}

func (h passwordHash) matches(password string) bool {
	other := argon2.IDKey(
		[]byte(password),
		h.salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLen,
	)
	return subtle.ConstantTimeCompare(h.key, other) == 1
}

// outdated reports whether the hash was made with costs other than p.
func (h passwordHash) outdated(p PasswordParams) bool {
	return h.params.Memory != p.Memory ||
		h.params.Time != p.Time ||
		h.params.Threads != p.Threads ||
		h.params.KeyLen != p.KeyLen
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	var h passwordHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return h, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return h, fmt.Errorf("%w: version %q", ErrMalformedHash, parts[2])
	}

	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&h.params.Memory, &h.params.Time, &h.params.Threads)
	if err != nil {
		return h, fmt.Errorf("%w: params %q", ErrMalformedHash, parts[3])
	}

	enc := base64.RawStdEncoding
	if h.salt, err = enc.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	if h.key, err = enc.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return h, fmt.Errorf("%w: key", ErrMalformedHash)
	}

	//nolint:gosec // key length is at most a few dozen bytes
	h.params.KeyLen = uint32(len(h.key))
	//nolint:gosec
	h.params.SaltLen = uint32(len(h.salt))

	return h, nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

var dummy struct {
	once sync.Once
	hash passwordHash
}

func dummyHash() passwordHash {
	dummy.once.Do(func() {
		encoded, err := HashPassword("timing-equalizer")
		if err != nil {
			panic(fmt.Sprintf("core: dummy password hash: %v", err))
		}
		dummy.hash, _ = parsePasswordHash(encoded)
	})
	return dummy.hash
}

// VerifyPasswordTimingSafe checks password against encoded and spends the
// same argon2 work when encoded is nil or empty, so unknown accounts cannot
// be told apart by latency. When the stored hash uses outdated costs and the
// password matches, rehash holds a replacement.
func VerifyPasswordTimingSafe(
	password string,
	encoded *string,
) (ok bool, rehash string, err error) {
	if encoded == nil || *encoded == "" {
		dummyHash().matches(password)
		return false, "", nil
	}

	h, err := parsePasswordHash(*encoded)
	if err != nil {
		dummyHash().matches(password)
		return false, "", err
	}

	if !h.matches(password) {
		return false, "", nil
	}

	if h.outdated(DefaultPasswordParams) {
		// A failed rehash leaves the old hash in place; the login still succeeds.
		if fresh, hashErr := HashPassword(password); hashErr == nil {
			rehash = fresh
		}
	}

	return true, rehash, nil
}
