// Package hashx computes content hashes for canonical serializations.
//
// The digest is legacy Keccak-256 (the pre-FIPS variant used by Ethereum
// tooling), not standard SHA3-256. Downstream consumers compare these values
// with hashes produced by eth-style keccak implementations, so the variant
// is load-bearing.
package hashx

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the raw 32-byte Keccak-256 digest of data.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Keccak256Hex returns the digest formatted as "0x" + lowercase hex.
func Keccak256Hex(data []byte) string {
	return "0x" + hex.EncodeToString(Keccak256(data))
}
