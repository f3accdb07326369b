package cacheable

import (
	"crypto/sha256"
	"encoding/hex"
)

// StableHash returns the 64-character lowercase hex SHA-256 of v's
// canonical binary encoding. The hash is structural: two distinct Value
// instances that are Equal always hash identically, regardless of Domain
// concrete type or construction path.
func StableHash(v Value) (string, error) {
	data, err := EncodeBytes(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
