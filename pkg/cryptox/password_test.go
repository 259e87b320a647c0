package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "cryptox")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(tmpDir, "pepper"))

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"otp code", "042917"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.NotEmpty(t, parts[4], "salt")
			require.NotEmpty(t, parts[5], "digest")

			require.NoError(t, VerifyPassword(tt.password, hash))
			require.False(t, NeedsRehash(hash))
		})
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("hunter22")
	require.NoError(t, err)
	b, err := HashPassword("hunter22")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, VerifyPassword("hunter22", a))
	require.NoError(t, VerifyPassword("hunter22", b))
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	err = VerifyPassword("battery staple", hash)
	require.ErrorIs(t, err, ErrPasswordMismatch)
	require.EqualError(t, err, "password does not match")
}

func TestVerifyPasswordMalformed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"too few parts", "$argon2id$v=19$m=19456,t=2,p=1$abc"},
		{"wrong algorithm", "$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$garbage$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"truncated bcrypt", "$2b$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword("anything", tt.hash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestVerifyPasswordAcceptsBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("from-node"), 10)
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("from-node", string(legacy)))
	require.ErrorIs(t, VerifyPassword("nope", string(legacy)), ErrPasswordMismatch)
	require.True(t, NeedsRehash(string(legacy)))
}

func TestNeedsRehashOnWeakerParams(t *testing.T) {
	require.True(t, NeedsRehash("$argon2id$v=19$m=4096,t=1,p=1$c2FsdA$aGFzaA"))
}

func TestSetPepperPathChangesHashes(t *testing.T) {
	hash, err := HashPassword("peppered")
	require.NoError(t, err)

	orig := pepperFile
	t.Cleanup(func() { SetPepperPath(orig) })

	SetPepperPath(filepath.Join(t.TempDir(), "other-pepper"))
	require.ErrorIs(t, VerifyPassword("peppered", hash), ErrPasswordMismatch)

	SetPepperPath(orig)
	require.NoError(t, VerifyPassword("peppered", hash))
}

func TestPepperFileIsReused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := readOrCreatePepper(path)
	require.NoError(t, err)
	second, err := readOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEmptyPepperFileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := readOrCreatePepper(path)
	require.Error(t, err)
}
