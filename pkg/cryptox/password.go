package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by VerifyPassword when the secret does not
// match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

const argon2Prefix = "$argon2id$"

// HashPassword returns a PHC-format argon2id hash of secret. It is used for
// account passwords and for one-time codes alike.
func HashPassword(secret string) (string, error) {
	p, err := loadPepper()
	if err != nil {
		return "", err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey([]byte(secret+p), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// VerifyPassword checks secret against encodedHash. Besides our own argon2id
// hashes it accepts legacy bcrypt hashes, which were computed without a
// pepper.
func VerifyPassword(secret, encodedHash string) error {
	if isBcrypt(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(secret))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		if err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
		return nil
	}
	return verifyArgon2(secret, encodedHash)
}

// NeedsRehash reports whether encodedHash should be replaced by a fresh
// HashPassword result on the next successful login.
func NeedsRehash(encodedHash string) bool {
	if !strings.HasPrefix(encodedHash, argon2Prefix) {
		return true
	}
	want := fmt.Sprintf("m=%d,t=%d,p=%d", memory, iterations, parallelism)
	parts := strings.Split(encodedHash, "$")
	return len(parts) != 6 || parts[3] != want
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

func verifyArgon2(secret, encodedHash string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	p, err := loadPepper()
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(secret+p),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - decoded from our own 32 byte hashes
	)
	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
