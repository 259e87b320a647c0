package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Argon2id parameters for newly created hashes. Existing hashes carry their
// own parameters in the PHC string.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath selects the file holding the pepper and drops any pepper
// already loaded, so the next hash reads the new file.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	pepperFile = file
	pepper = ""
}

// loadPepper returns the process pepper, reading it from disk (or creating
// it) on first use.
func loadPepper() (string, error) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper, nil
	}

	p, err := readOrCreatePepper(filepath.Clean(pepperFile))
	if err != nil {
		return "", fmt.Errorf("cryptox: load pepper: %w", err)
	}
	pepper = p
	return pepper, nil
}

func readOrCreatePepper(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) == 0 {
			return "", fmt.Errorf("pepper file %s is empty", path)
		}
		return string(b), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(raw)

	// O_EXCL so two processes starting together cannot overwrite each other.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return readOrCreatePepper(path)
		}
		return "", err
	}
	defer f.Close()

	if _, err := f.WriteString(p); err != nil {
		return "", err
	}
	return p, nil
}
