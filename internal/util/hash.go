package util

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash returns the SHA256 hex digest of clipboard content. Used for
// cheap change comparison without holding on to large payloads.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}
