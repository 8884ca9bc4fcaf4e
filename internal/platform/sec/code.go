// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// activation code bounds: 4 decimal digits, 1000–9999 inclusive.
const (
	activationCodeMin  = 1000
	activationCodeSpan = 9000
)

// GenerateActivationCode returns a uniformly random 4-digit decimal code.
//
// # Security
//
// crypto/rand is used so the code cannot be predicted from earlier codes.
// The short length is acceptable because the code is only valid together
// with the signed activation token it was issued with, for five minutes.
func GenerateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(activationCodeSpan))
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate activation code: %w", err)
	}
	return fmt.Sprintf("%04d", activationCodeMin+n.Int64()), nil
}
