package common

import "github.com/nspcc-dev/neo-go/pkg/interop"

// zeroHash is a 20-byte all-zero script hash used as "no address" value.
const zeroHash = "\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"

// ZeroHash160 returns the all-zero script hash.
func ZeroHash160() interop.Hash160 {
	return interop.Hash160(zeroHash)
}

// IsValidHash160 checks that h has the length of a script hash.
func IsValidHash160(h interop.Hash160) bool {
	return len(h) == interop.Hash160Len
}

// IsZeroHash160 checks that h is a script hash with all bytes set to zero.
func IsZeroHash160(h interop.Hash160) bool {
	return h.Equals(zeroHash)
}
