package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// OTPLength is the number of decimal digits in a verification code.
const OTPLength = 6

// GenerateOTP returns a six digit verification code. The code is an HOTP
// value over a throwaway random secret and counter, which gives uniformly
// distributed, zero padded digits.
func GenerateOTP() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate otp secret: %w", err)
	}

	var counter [8]byte
	if _, err := rand.Read(counter[:]); err != nil {
		return "", fmt.Errorf("failed to generate otp counter: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(
		base32.StdEncoding.EncodeToString(secret),
		binary.BigEndian.Uint64(counter[:]),
		hotp.ValidateOpts{
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return code, nil
}

// IsOTPFormat reports whether code looks like something GenerateOTP could
// have produced.
func IsOTPFormat(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
