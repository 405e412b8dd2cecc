package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Numeric generates a uniformly random numeric code of the given length,
// drawn from crypto/rand over the full digit space so leading zeros are
// as likely as any other digit. The result is zero-padded to length.
func Numeric(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
