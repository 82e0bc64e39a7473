// Package random generates the opaque one-time tokens used for email
// confirmation links.
package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Token returns a 32-character hex token from a cryptographic source.
func Token() (string, error) {
	const op = "random.Token"
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
