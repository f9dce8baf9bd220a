package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	otpMin   = 1000
	otpRange = 9000
)

// GenerateOTP returns a 4-digit code drawn uniformly from 1000..9999.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+otpMin), nil
}
