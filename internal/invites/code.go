package invites

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Ambiguous characters (0/O, 1/I/L) are excluded so codes survive being read
// aloud or copied by hand.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const minCodeLength = 6

// GenerateCode produces a random, human-readable invite code.
func GenerateCode(length int) (string, error) {
	if length < minCodeLength {
		return "", fmt.Errorf("code length %d below minimum %d", length, minCodeLength)
	}

	max := big.NewInt(int64(len(codeAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating invite code: %w", err)
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
