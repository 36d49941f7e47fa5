package lnurl

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Mime types allowed inside pay-request metadata.
const (
	MetadataPlainText  = "text/plain"
	MetadataIdentifier = "text/identifier"
)

// Metadata is the ordered list of [mime, value] pairs committed to by the
// invoice description hash.
type Metadata [][2]string

// Encode serializes the metadata to the raw JSON array string wallets hash
// and verify against.
func (m Metadata) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("could not encode metadata: %w", err)
	}
	return string(b), nil
}

// Decode parses the raw JSON array string back into metadata pairs.
func (m *Metadata) Decode(raw string) error {
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return fmt.Errorf("could not decode metadata: %w", err)
	}
	return nil
}

// Entry returns the value of the first pair with the given mime type.
func (m Metadata) Entry(mime string) (string, bool) {
	for _, pair := range m {
		if pair[0] == mime {
			return pair[1], true
		}
	}
	return "", false
}

// HashDescription is the commitment a BOLT11 invoice carries for a
// pay-request description: sha256 over the serialized metadata.
func HashDescription(description string) [32]byte {
	return sha256.Sum256([]byte(description))
}
