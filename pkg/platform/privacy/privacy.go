// Package privacy holds the one-way transforms applied to subject identifiers
// and message text before anything reaches logs or durable storage.
package privacy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters kept from the digest. The hash
// is an internal correlation key, not a security boundary.
const HashLength = 16

// HashSubjectID returns the unsalted SHA-256 prefix of id.
func HashSubjectID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// Hasher hashes subject identifiers, optionally keyed with a secret salt.
// The zero value is unsalted and matches HashSubjectID.
//
// Unsalted hashes of low-entropy ids (clinic codes) can be correlated offline
// against a known list. Configure a salt wherever that matters.
type Hasher struct {
	salt []byte
}

// NewHasher returns a Hasher keyed with salt. An empty salt yields the
// unsalted behaviour.
func NewHasher(salt string) Hasher {
	if salt == "" {
		return Hasher{}
	}
	return Hasher{salt: []byte(salt)}
}

// Salted reports whether the hasher uses HMAC-SHA-256.
func (h Hasher) Salted() bool { return len(h.salt) > 0 }

// Hash returns the fixed-length, deterministic hash of id.
func (h Hasher) Hash(id string) string {
	if !h.Salted() {
		return HashSubjectID(id)
	}
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))[:HashLength]
}

// DefaultRedactLength is the number of characters RedactText keeps.
const DefaultRedactLength = 20

// RedactText truncates text to maxRunes characters, appending "..." when
// anything was cut. Counting is by rune so multi-byte text is never split.
func RedactText(text string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultRedactLength
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
