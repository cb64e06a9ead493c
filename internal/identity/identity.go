// Package identity resolves bearer tokens into authz principals. Accounts are
// managed elsewhere; this package only trusts what the signed token says.
package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blog-content-api/internal/authz"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the token payload issued by the account service
type Claims struct {
	UserID   int64      `json:"uid"`
	Role     authz.Role `json:"role"`
	Disabled bool       `json:"disabled,omitempty"`
	jwt.RegisteredClaims
}

// Gate verifies HS256 tokens signed with a shared secret
type Gate struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGate creates a gate for the given secret and token lifetime
func NewGate(secret string, ttl time.Duration) *Gate {
	return &Gate{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Resolve parses a token into the caller it identifies
func (g *Gate) Resolve(token string) (*authz.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID := claims.UserID
	if userID == 0 && claims.Subject != "" {
		userID, _ = strconv.ParseInt(claims.Subject, 10, 64)
	}
	if userID <= 0 {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role != authz.RoleAdmin {
		role = authz.RoleUser
	}

	return &authz.Principal{
		ID:      userID,
		Role:    role,
		Enabled: !claims.Disabled,
	}, nil
}

// Issue signs a token for p. Used by tooling and tests; login lives elsewhere.
func (g *Gate) Issue(p authz.Principal) (string, error) {
	now := g.now()
	claims := Claims{
		UserID:   p.ID,
		Role:     p.Role,
		Disabled: !p.Enabled,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}
