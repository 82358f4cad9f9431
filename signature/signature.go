// Package signature signs outbound webhook requests following the Standard Webhooks scheme:
// an HMAC-SHA256 over "{id}.{unix timestamp}.{body}" sent as "v1,<base64>".
//
// The relay itself only signs. GenerateSecret backs the validate-routes CLI and Verify is
// the receiving side, kept here for downstream consumers and tests.
package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix is the prefix for symmetric signing secrets
	SecretPrefix = "whsec_"

	// Version is the version identifier for symmetric signatures
	Version = "v1"

	// MinSecretBytes is the minimum secret size (192 bits)
	MinSecretBytes = 24

	// MaxSecretBytes is the maximum secret size (512 bits)
	MaxSecretBytes = 64
)

// Header names set on signed requests
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

// Secret is a parsed signing secret
type Secret struct {
	raw     []byte
	encoded string
}

// GenerateSecret creates a random secret of size bytes
func GenerateSecret(size int) (Secret, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}

	return Secret{
		raw:     raw,
		encoded: SecretPrefix + base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// ParseSecret parses a base64 secret carrying the whsec_ prefix
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, SecretPrefix))
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}
	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	return Secret{raw: raw, encoded: encoded}, nil
}

// String returns the encoded secret with prefix
func (s Secret) String() string {
	return s.encoded
}

// Bytes returns the raw secret bytes
func (s Secret) Bytes() []byte {
	return s.raw
}

// Sign returns the signature for a message in the form "v1,<base64>"
func Sign(secret Secret, msgID string, timestamp time.Time, body []byte) (string, error) {
	if strings.Contains(msgID, ".") {
		return "", fmt.Errorf("message ID must not contain '.'")
	}

	mac := hmac.New(sha256.New, secret.Bytes())
	fmt.Fprintf(mac, "%s.%d.", msgID, timestamp.Unix())
	mac.Write(body)

	return Version + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Headers builds the three headers a signed request carries
func Headers(secret Secret, msgID string, timestamp time.Time, body []byte) (map[string]string, error) {
	sig, err := Sign(secret, msgID, timestamp, body)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		HeaderID:        msgID,
		HeaderTimestamp: strconv.FormatInt(timestamp.Unix(), 10),
		HeaderSignature: sig,
	}, nil
}

// Verify checks a webhook-signature header, which may hold several space-delimited signatures.
// Comparison is constant-time.
func Verify(secret Secret, msgID string, timestamp time.Time, body []byte, header string) (bool, error) {
	expected, err := Sign(secret, msgID, timestamp, body)
	if err != nil {
		return false, fmt.Errorf("calculating signature: %w", err)
	}
	want, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(expected, Version+","))

	found := false
	for _, part := range strings.Fields(header) {
		version, encoded, ok := strings.Cut(part, ",")
		if !ok {
			return false, fmt.Errorf("invalid signature format %q, expected 'version,signature'", part)
		}
		found = true
		if version != Version {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		if subtle.ConstantTimeCompare(want, got) == 1 {
			return true, nil
		}
	}
	if !found {
		return false, fmt.Errorf("signature header is empty")
	}
	return false, nil
}
