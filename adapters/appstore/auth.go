// Package appstore - API token source
package appstore

import (
	"crypto/ecdsa"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"appstore-pricing/internal/errors"
)

// tokenLifetime is the storefront's maximum accepted token age
const tokenLifetime = 20 * time.Minute

// tokenSlack refreshes tokens shortly before they expire
const tokenSlack = time.Minute

// TokenSource mints and reuses ES256 bearer tokens for the API.
// Safe for concurrent use.
type TokenSource struct {
	keyID    string
	issuerID string
	key      *ecdsa.PrivateKey

	mu      sync.Mutex
	token   string
	expires time.Time

	now func() time.Time
}

// NewTokenSource parses the .p8 private key and returns a token source
func NewTokenSource(keyID, issuerID, privateKeyPEM string) (*TokenSource, error) {
	if keyID == "" || issuerID == "" {
		return nil, errors.New(errors.TypeConfig, "API key id and issuer id are required")
	}

	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "cannot parse API private key", err)
	}

	return &TokenSource{
		keyID:    keyID,
		issuerID: issuerID,
		key:      key,
		now:      time.Now,
	}, nil
}

// Token returns a signed bearer token, reusing the cached one until it is
// close to expiry
func (s *TokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Before(s.expires.Add(-tokenSlack)) {
		return s.token, nil
	}

	expires := now.Add(tokenLifetime)
	claims := jwt.MapClaims{
		"iss": s.issuerID,
		"iat": now.Unix(),
		"exp": expires.Unix(),
		"aud": "appstoreconnect-v1",
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = s.keyID

	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(errors.TypeInternal, "cannot sign API token", err)
	}

	s.token = signed
	s.expires = expires
	return signed, nil
}
