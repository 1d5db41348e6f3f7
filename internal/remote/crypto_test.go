package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_SealOpen(t *testing.T) {
	s := NewSealer("passphrase", []byte("0123456789abcdef"))

	sealed, err := s.Seal("buy milk")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", opened)
}

func TestSealer_WrongKeyKeepsText(t *testing.T) {
	sealed, err := NewSealer("right", []byte("0123456789abcdef")).Seal("buy milk")
	require.NoError(t, err)

	opened, err := NewSealer("wrong", []byte("0123456789abcdef")).Open(sealed)
	assert.Error(t, err)
	assert.Equal(t, sealed, opened)
}

func TestSealer_PlainText(t *testing.T) {
	s := NewSealer("passphrase", []byte("0123456789abcdef"))
	opened, err := s.Open("plain")
	assert.ErrorIs(t, err, ErrNotSealed)
	assert.Equal(t, "plain", opened)
}

func TestSealer_Fingerprint(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a := NewSealer("one", salt).Fingerprint()
	assert.Len(t, a, 16)
	assert.Equal(t, a, NewSealer("one", salt).Fingerprint())
	assert.NotEqual(t, a, NewSealer("two", salt).Fingerprint())
}
