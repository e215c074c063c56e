package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// DigestKey is the object metadata key holding the payload SHA-256.
const DigestKey = "strata-sha256"

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// validateID rejects identifiers that could escape a key namespace.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("empty identifier")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." || strings.Contains(id, "..") {
		return fmt.Errorf("invalid identifier %q", id)
	}
	return nil
}
