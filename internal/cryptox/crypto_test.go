package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveSigningKey_Deterministic(t *testing.T) {
	k1 := DeriveSigningKey([]byte("correct horse"), []byte("petdiary"))
	k2 := DeriveSigningKey([]byte("correct horse"), []byte("petdiary"))
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)
}

func TestDeriveSigningKey_DiffersByPassphraseAndSalt(t *testing.T) {
	base := DeriveSigningKey([]byte("secret"), []byte("salt-a"))

	other := DeriveSigningKey([]byte("secret2"), []byte("salt-a"))
	require.NotEqual(t, base, other)

	otherSalt := DeriveSigningKey([]byte("secret"), []byte("salt-b"))
	require.NotEqual(t, base, otherSalt)
}
