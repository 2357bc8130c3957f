// Package token signs and checks the locally issued tokens handed out while
// the session runs on fallback data. Backend tokens are opaque to it.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/ecowork/domain"
)

const DefaultIssuer = "ecowork-demo"

var ErrInvalidToken = domain.NewError(domain.ErrCodeUnauthorized, "invalid demo token")

// Claims carried by a demo token.
type Claims struct {
	Kind      domain.IdentityKind `json:"kind"`
	CompanyID string              `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 demo tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

// Issue signs a token for identity.
func (i *Issuer) Issue(identity domain.Identity) (string, error) {
	now := i.now()
	claims := Claims{
		Kind:      identity.Kind,
		CompanyID: identity.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "sign demo token", err)
	}
	return signed, nil
}

// IsDemo reports whether raw was minted by this issuer. The signature is not checked.
func (i *Issuer) IsDemo(raw string) bool {
	if raw == "" {
		return false
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return false
	}
	return claims.Issuer == i.issuer
}

// Verify checks signature, issuer and expiry of a demo token.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, ErrInvalidToken.Message, err)
	}
	if !parsed.Valid || claims.Issuer != i.issuer {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !i.now().Before(claims.ExpiresAt.Time) {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "demo token expired", errors.New("expired"))
	}
	return claims, nil
}
