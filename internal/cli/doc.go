// Package cli provides the interactive pet diary command-line client.
//
// It wires configuration, the record repository, and the session gate into an
// interactive REPL. Typical flow: authorize with an access token, load the
// diary, then browse and edit one record per calendar date.
//
// Key features:
//   - Login / Logout with an allow-listed access token
//   - List the diary, newest date first
//   - Open a date: edit the existing record or create a new one
//   - Attach a photo, compressed on the spot
//   - Delete a date's record after confirmation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
