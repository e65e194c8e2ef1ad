package solana

import (
	"strings"

	"github.com/mr-tron/base58"
)

// alphabet is the Bitcoin base58 alphabet used by Solana. It excludes the
// visually ambiguous characters 0, O, I and l.
const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// pubkeyLen is the decoded length of a Solana public key.
const pubkeyLen = 32

// Validator classifies strings as well-formed Solana mint addresses.
// MinLen/MaxLen bound the encoded length; a 32-byte key always encodes
// within [32, 44].
type Validator struct {
	MinLen int
	MaxLen int
}

// NewValidator returns a Validator with the given encoded-length bounds.
// Non-positive values fall back to the standard 32/44 bounds.
func NewValidator(minLen, maxLen int) Validator {
	if minLen <= 0 {
		minLen = 32
	}
	if maxLen <= 0 {
		maxLen = 44
	}
	return Validator{MinLen: minLen, MaxLen: maxLen}
}

// IsValid reports whether addr is a well-formed Solana address: encoded
// length within bounds, base58 alphabet only, and decoding to exactly 32
// bytes.
func (v Validator) IsValid(addr string) bool {
	if len(addr) < v.MinLen || len(addr) > v.MaxLen {
		return false
	}
	for _, c := range addr {
		if !strings.ContainsRune(alphabet, c) {
			return false
		}
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return false
	}
	return len(decoded) == pubkeyLen
}

// ExtractAll returns the unique valid addresses appearing in text, in
// first-occurrence order. Candidates are maximal alphanumeric runs, so an
// address embedded in a longer token never matches.
func (v Validator) ExtractAll(text string) []string {
	var (
		addrs []string
		seen  = make(map[string]struct{})
	)

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		candidate := text[start:end]
		start = -1
		if _, dup := seen[candidate]; dup {
			return
		}
		if v.IsValid(candidate) {
			seen[candidate] = struct{}{}
			addrs = append(addrs, candidate)
		}
	}

	for i := 0; i < len(text); i++ {
		if isWordByte(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))

	return addrs
}

func isWordByte(b byte) bool {
	return b >= '0' && b <= '9' ||
		b >= 'A' && b <= 'Z' ||
		b >= 'a' && b <= 'z' ||
		b == '_'
}
