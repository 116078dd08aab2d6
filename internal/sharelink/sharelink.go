// Package sharelink mints and verifies the signed tokens embedded in
// public campaign share URLs. Tokens are link-signing only; they carry
// no user identity.
package sharelink

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims for a shared campaign link.
type Claims struct {
	CampaignID string `json:"campaign_id"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 share tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer. A non-positive ttl means tokens never
// expire.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("sharelink: empty secret")
	}
	return &Signer{secret: secret, ttl: ttl}, nil
}

// Mint issues a token for the given campaign id.
func (s *Signer) Mint(campaignID string) (string, error) {
	if campaignID == "" {
		return "", errors.New("sharelink: empty campaign id")
	}

	now := time.Now()
	claims := &Claims{
		CampaignID: campaignID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates a token and returns the campaign id it names.
func (s *Signer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("sharelink: empty token")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("sharelink: invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("sharelink: invalid token")
	}
	if claims.CampaignID == "" {
		return "", errors.New("sharelink: missing campaign_id")
	}
	return claims.CampaignID, nil
}
