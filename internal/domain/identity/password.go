package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored hash layout: pbkdf2_sha256$<iterations>$<salt_b64>$<hash_b64>
const (
	passwordAlgorithm  = "pbkdf2_sha256"
	passwordIterations = 100_000
	passwordSaltSize   = 16
	passwordKeySize    = sha256.Size
	passwordSeparator  = "$"
)

// HashPassword derives a self-describing PBKDF2-SHA256 hash with a fresh random salt
func HashPassword(password string) (string, error) {
	salt := make([]byte, passwordSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, passwordIterations, passwordKeySize, sha256.New)
	return strings.Join([]string{
		passwordAlgorithm,
		strconv.Itoa(passwordIterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, passwordSeparator), nil
}

// VerifyPassword recomputes the key with the stored salt and iteration count.
// A malformed stored value never matches.
func VerifyPassword(password, stored string) bool {
	parts := strings.SplitN(stored, passwordSeparator, 4)
	if len(parts) != 4 || parts[0] != passwordAlgorithm {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
