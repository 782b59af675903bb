package ir

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainSpec is the domain prefix for spec content hashing. The version
// suffix enables future algorithm migration.
const DomainSpec = "etch/spec/v1"

// SpecHash computes the content-addressed identity of a spec source.
// The source is NFC normalized first so Unicode-equivalent spellings of
// the same spec hash identically. Used by the compile cache to detect
// unchanged inputs.
func SpecHash(source string) string {
	canonical := norm.NFC.String(source)
	h := sha256.New()
	h.Write([]byte(DomainSpec))
	h.Write([]byte{0x00}) // domain/data boundary separator
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}
