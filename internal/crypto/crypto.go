package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes = 64
	otpBytes  = 5

	encryptIterations = 10000
	encryptKeyLen     = 64
)

// CreateSalt returns a new random salt as a hex string. Each account gets
// one salt at creation; it is never rotated here.
func CreateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to create salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateOtp returns a short random code intended for human transcription.
// Uniqueness is not guaranteed; callers scope codes per account with a
// short expiry.
func CreateOtp() (string, error) {
	buf := make([]byte, otpBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to create otp: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Encrypt derives a one-way, deterministic digest of value keyed by salt
// (PBKDF2-SHA512). The same (value, salt) pair always yields the same
// output, so the result can be used as a lookup key.
func Encrypt(value, salt string) string {
	key := pbkdf2.Key([]byte(value), []byte(salt), encryptIterations, encryptKeyLen, sha512.New)
	return hex.EncodeToString(key)
}
