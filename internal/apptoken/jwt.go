package apptoken

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// assertionSkew backdates issued-at to tolerate clock drift.
	assertionSkew = 10 * time.Second
	// assertionLifetime is the longest assertion GitHub accepts.
	assertionLifetime = 600 * time.Second
)

// ParsePrivateKey decodes a PEM encoded RSA key. Keys passed through
// environment variables often carry literal "\n" sequences; those are
// expanded first.
func ParsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	pemData = strings.TrimSpace(strings.ReplaceAll(pemData, `\n`, "\n"))
	if pemData == "" {
		return nil, fmt.Errorf("private key is empty")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// SignAssertion creates the RS256 app assertion exchanged for an
// installation token.
func SignAssertion(appID int64, key *rsa.PrivateKey, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-assertionSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign app assertion: %w", err)
	}
	return signed, nil
}
