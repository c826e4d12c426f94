// Package cryptox holds the key-derivation helper used by the session gate.
package cryptox

import (
	"golang.org/x/crypto/argon2"
)

// DeriveSigningKey stretches a configured passphrase into a 32-byte key
// suitable for HMAC signing of session tokens. Argon2id parameters follow
// the library's interactive-use recommendation (t=1, m=64MiB, p=4).
//
// The same passphrase and salt always produce the same key, so tokens
// issued by one process remain verifiable by the next.
func DeriveSigningKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}
