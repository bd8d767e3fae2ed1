package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Generator produces hex secrets from n random bytes
type Generator func(n int) (string, error)

// Hex returns 2n hex characters drawn from crypto/rand
func Hex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
