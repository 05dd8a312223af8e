package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	json "github.com/goccy/go-json"
)

// KeyGenerator derives cache keys by SHA-256 hashing an operation name and
// an ordered list of argument fragments. Keys are stable across runs and
// sensitive to fragment order.
type KeyGenerator struct {
	// Prefix is prepended to all generated keys.
	Prefix string
}

// NewKeyGenerator creates a KeyGenerator with an optional prefix.
func NewKeyGenerator(prefix string) *KeyGenerator {
	return &KeyGenerator{Prefix: prefix}
}

// Generate creates a key of the form [prefix:]sha256("op:<name>|arg:..|arg:..").
// String fragments are used verbatim; everything else is JSON-serialized,
// which keeps struct and map fragments deterministic (map keys are sorted
// during marshaling).
func (g *KeyGenerator) Generate(operation string, parts ...any) (string, error) {
	var sb strings.Builder

	sb.WriteString("op:")
	sb.WriteString(operation)

	for _, p := range parts {
		sb.WriteString("|arg:")
		switch v := p.(type) {
		case string:
			sb.WriteString(v)
		default:
			data, err := json.Marshal(p)
			if err != nil {
				return "", err
			}
			sb.Write(data)
		}
	}

	hash := sha256.Sum256([]byte(sb.String()))
	hashHex := hex.EncodeToString(hash[:])

	if g.Prefix == "" {
		return hashHex, nil
	}
	return g.Prefix + ":" + hashHex, nil
}
