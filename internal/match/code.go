package match

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeLength is the number of characters in a match code.
	CodeLength = 6
	// MaxCodeAttempts bounds the retries on code collisions.
	MaxCodeAttempts = 10

	// Look-alike characters (0/O, 1/I) are left out so codes are easy to type.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CodeGenerator produces candidate match codes.
type CodeGenerator func() (string, error)

// RandomCode returns a random human-typable match code.
func RandomCode() (string, error) {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate match code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
