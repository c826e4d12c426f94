// Package session implements the session gate: it authenticates a user from
// a signed identity token and narrows access to a fixed email allow-list.
// The rest of the app only ever sees "authorized identity present" or not.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoIdentity — no user is logged in.
	ErrNoIdentity = errors.New("no identity present")

	// ErrInvalidToken — the identity token is malformed, mis-signed or expired.
	ErrInvalidToken = errors.New("invalid identity token")

	// ErrNotAllowed — the identity is valid but not on the allow-list.
	ErrNotAllowed = errors.New("identity is not on the allow-list")
)

// Identity is an authenticated user as the core sees it.
type Identity struct {
	Email string
}

// Claims carries the registered claims plus the email the allow-list is
// evaluated against.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Gate validates identity tokens and holds the current session identity.
// It is used from the single presentation goroutine and needs no locking.
type Gate struct {
	allowed    map[string]struct{}
	signingKey []byte
	current    *Identity
}

// NewGate builds a gate for the given allow-list. Emails are compared
// case-insensitively.
func NewGate(allowList []string, signingKey []byte) *Gate {
	allowed := make(map[string]struct{}, len(allowList))
	for _, e := range allowList {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &Gate{allowed: allowed, signingKey: signingKey}
}

// IsAllowed reports whether email is on the allow-list.
func (g *Gate) IsAllowed(email string) bool {
	_, ok := g.allowed[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Authorize parses and verifies an identity token, checks the allow-list and,
// on success, installs the identity as current. A user with a valid token
// who is not on the list gets ErrNotAllowed; the session stays logged out.
func (g *Gate) Authorize(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return g.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return Identity{}, ErrInvalidToken
	}

	if !g.IsAllowed(claims.Email) {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotAllowed, claims.Email)
	}

	id := Identity{Email: strings.ToLower(strings.TrimSpace(claims.Email))}
	g.current = &id
	return id, nil
}

// CurrentIdentity returns the logged-in identity, if any.
func (g *Gate) CurrentIdentity() (Identity, bool) {
	if g.current == nil {
		return Identity{}, false
	}
	return *g.current, true
}

// Clear logs the current identity out.
func (g *Gate) Clear() {
	g.current = nil
}

// IssueToken signs an identity token for email, valid for ttl. Used by tests
// and by the token helper command to mint tokens for allow-listed users.
func (g *Gate) IssueToken(email string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(g.signingKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
