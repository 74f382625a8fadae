// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// serialization and digests for CAR documents.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// DigestPrefix is prepended to every hex digest returned by Digest.
const DigestPrefix = "sha256:"

// JCS returns the RFC 8785 canonical JSON representation of v.
// Object keys are sorted, HTML escaping is off and numbers use the ES6 form.
func JCS(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jcs: marshal failed: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs: transform failed: %w", err)
	}
	return out, nil
}

// Digest returns "sha256:<hex>" over the canonical form of v.
// Two documents that differ only in whitespace or key order share a digest.
func Digest(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return DigestPrefix + HashBytes(b), nil
}

// HashBytes computes SHA-256 of data and returns it hex encoded.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
