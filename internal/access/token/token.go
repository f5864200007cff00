// Package token turns signed access tokens into CurrentUser values.
package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	apperrors "github.com/allisson/inspecta/internal/errors"
)

// ErrInvalidToken is returned for any token that fails signature, claim or permission checks.
var ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

// Claims are the access token claims carried by the authentication backend.
type Claims struct {
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwtv5.RegisteredClaims
}

// Parser validates HMAC-signed tokens.
type Parser struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewParser returns a Parser. An empty issuer disables the issuer check.
func NewParser(secret []byte, issuer string) *Parser {
	return &Parser{secret: secret, issuer: issuer, leeway: 30 * time.Second}
}

// Parse validates the token and builds the CurrentUser from its claims.
func (p *Parser) Parse(raw string) (*accessDomain.CurrentUser, error) {
	if len(p.secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret not configured", ErrInvalidToken)
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(p.leeway),
		jwtv5.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(p.issuer))
	}

	claims := &Claims{}
	tok, err := jwtv5.ParseWithClaims(raw, claims, func(t *jwtv5.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	user, err := accessDomain.NewCurrentUser(claims.Subject, claims.Roles, claims.Permissions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return user, nil
}

// Issue signs a token for the given user. Used by tooling and tests; production tokens
// come from the authentication backend.
func Issue(secret []byte, issuer string, user *accessDomain.CurrentUser, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Roles:       user.Roles(),
		Permissions: user.PermissionStrings(),
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(secret)
}
