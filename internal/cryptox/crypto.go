// Package cryptox holds the password hashing used for account credentials
// and the admin password. Hashes are argon2id with a random per-password
// salt and are compared in constant time.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	scheme = "argon2id"

	saltSize = 16
	keyLen   = 32

	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4

	// Upper bounds accepted from a stored secret. Memory is in KiB.
	maxTime    = 10
	maxMemory  = 1024 * 1024
	maxThreads = 64
)

// Params are the argon2id cost parameters recorded with every hash, so a
// later change of defaults does not invalidate stored secrets.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultParams returns the parameters used by HashPassword.
func DefaultParams() Params {
	return Params{Time: argonTime, Memory: argonMemory, Threads: argonThreads}
}

func deriveKey(password, salt []byte, p Params) []byte {
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, keyLen)
}

// HashPassword returns an encoded secret of the form
//
//	argon2id$<time>$<memory>$<threads>$<salt hex>$<key hex>
//
// suitable for storing in User.PasswordSecret.
func HashPassword(password []byte) string {
	return HashPasswordWith(password, DefaultParams())
}

// HashPasswordWith is HashPassword with explicit cost parameters.
func HashPasswordWith(password []byte, p Params) string {
	return hashWith(password, common.GenerateRandByteArray(saltSize), p)
}

func hashWith(password, salt []byte, p Params) string {
	return encode(p, salt, deriveKey(password, salt, p))
}

// Decoy returns a well-formed secret with cost parameters p that no password
// matches. VerifyPassword against it costs as much as against a real hash.
func Decoy(p Params) string {
	return encode(p, make([]byte, saltSize), make([]byte, keyLen))
}

func encode(p Params, salt, key []byte) string {
	return strings.Join([]string{
		scheme,
		strconv.FormatUint(uint64(p.Time), 10),
		strconv.FormatUint(uint64(p.Memory), 10),
		strconv.FormatUint(uint64(p.Threads), 10),
		hex.EncodeToString(salt),
		hex.EncodeToString(key),
	}, "$")
}

// VerifyPassword reports whether password matches encoded. Malformed
// encodings never match.
func VerifyPassword(encoded string, password []byte) bool {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}
	candidate := deriveKey(password, salt, p)
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != scheme {
		return Params{}, nil, nil, fmt.Errorf("unsupported secret format")
	}

	t, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("time: %w", err)
	}
	m, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("memory: %w", err)
	}
	th, err := strconv.ParseUint(parts[3], 10, 8)
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("threads: %w", err)
	}
	if t == 0 || m == 0 || th == 0 {
		return Params{}, nil, nil, fmt.Errorf("zero cost parameter")
	}
	if t > maxTime || m > maxMemory || th > maxThreads {
		return Params{}, nil, nil, fmt.Errorf("cost parameter out of range: t=%d m=%d p=%d", t, m, th)
	}

	salt, err := hex.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("salt: %w", err)
	}
	key, err := hex.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("key: %w", err)
	}
	if len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("empty key")
	}

	return Params{Time: uint32(t), Memory: uint32(m), Threads: uint8(th)}, salt, key, nil
}
