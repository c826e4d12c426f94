package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fine2025/petdiary/internal/session"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getWithDefault = GetWithDefault
var getSecret = GetSecret

// issuedTokenTTL is how long a minted access token stays valid. The diary is
// a personal tool, so tokens are long-lived and re-minted rarely.
const issuedTokenTTL = 30 * 24 * time.Hour

// Login prompts for an access token and authorizes the session.
//
// Each failure cause gets its own message: a malformed or expired token is a
// credential problem, while a valid token for an email outside the allow-list
// is an access decision. On success the diary is loaded immediately so the
// user lands in a ready session.
func (a *App) Login(ctx context.Context) error {
	token, err := getSecret(a.out, "Paste access token: ")
	if err != nil {
		return err
	}

	id, err := a.gate.Authorize(string(token))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotAllowed):
			fmt.Fprintln(a.out, "This account is not on the diary's allow-list")
		case errors.Is(err, session.ErrInvalidToken):
			fmt.Fprintln(a.out, "The token is invalid or expired")
		default:
			fmt.Fprintf(a.out, "Login failed: %s\n", err.Error())
		}
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", id.Email)
	return a.Reload(ctx)
}

// Logout drops the current identity. Cached records stay in memory until the
// next login reloads them.
func (a *App) Logout(ctx context.Context) error {
	a.gate.Clear()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Token mints an access token for an allow-listed email. This is the admin
// path for a personal deployment: run it once per device, paste the token at
// login.
func (a *App) Token(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email to mint a token for", a.out)
	if err != nil {
		return err
	}

	if !a.gate.IsAllowed(email) {
		fmt.Fprintln(a.out, "This email is not on the allow-list; the token would be rejected at login")
		return session.ErrNotAllowed
	}

	token, err := a.gate.IssueToken(email, issuedTokenTTL)
	if err != nil {
		fmt.Fprintf(a.out, "Could not mint token: %s\n", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Token (valid %s):\n%s\n", issuedTokenTTL, token)
	return nil
}
