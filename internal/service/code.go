package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	codeMin  = 100000
	codeSpan = 900000

	// DefaultCodeTTL is how long an issued verification code stays valid.
	DefaultCodeTTL = 10 * time.Minute
)

// GenerateCode produces a 6-digit numeric one-time code, uniform over
// [100000, 999999], and the absolute instant at which it expires.
func GenerateCode(ttl time.Duration) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%d", codeMin+n.Int64())
	return code, time.Now().UTC().Add(ttl), nil
}
