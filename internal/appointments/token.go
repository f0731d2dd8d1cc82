package appointments

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
)

const (
	tokenPrefix = "APT-"
	tokenChars  = 16
)

// Crockford-style alphabet: no I, L, O or U to misread when a patient types
// the reference back.
var tokenEncoding = base32.NewEncoding("ABCDEFGHJKMNPQRSTVWXYZ0123456789").WithPadding(base32.NoPadding)

var ErrInvalidToken = errors.New("appointments: invalid token")

// NewToken returns a fresh public booking reference. It carries 80 random
// bits and says nothing about the appointment id.
func NewToken() (string, error) {
	buf := make([]byte, tokenChars*5/8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("appointments: token entropy failed: %w", err)
	}
	return tokenPrefix + tokenEncoding.EncodeToString(buf), nil
}

// NormalizeToken accepts tokens in any letter case and with or without the
// dash after the prefix.
func NormalizeToken(token string) (string, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	body, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok {
		body, ok = strings.CutPrefix(token, strings.TrimSuffix(tokenPrefix, "-"))
	}
	if !ok || len(body) != tokenChars {
		return "", ErrInvalidToken
	}
	if _, err := tokenEncoding.DecodeString(body); err != nil {
		return "", ErrInvalidToken
	}
	return tokenPrefix + body, nil
}
