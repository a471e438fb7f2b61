package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealRoundTrip(t *testing.T) {
	sealer, err := NewSealer(testKeyHex)
	require.NoError(t, err)

	sealed, err := sealer.Seal("portal-token-abc")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "portal-token-abc")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "portal-token-abc", opened)
}

func TestSealIsNotDeterministic(t *testing.T) {
	sealer, err := NewSealer(testKeyHex)
	require.NoError(t, err)

	a, err := sealer.Seal("same-token")
	require.NoError(t, err)
	b, err := sealer.Seal("same-token")
	require.NoError(t, err)
	assert.NotEqual(t, a, b) // fresh nonce per seal
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	sealer, err := NewSealer(testKeyHex)
	require.NoError(t, err)
	sealed, err := sealer.Seal("portal-token-abc")
	require.NoError(t, err)

	other, err := NewSealer(strings.Repeat("ff", 32))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	_, err := NewSealer("too-short")
	assert.Error(t, err)

	_, err = NewSealer("abcd")
	assert.ErrorIs(t, err, ErrSealKeySize)
}

func TestOpenRejectsGarbage(t *testing.T) {
	sealer, err := NewSealer(testKeyHex)
	require.NoError(t, err)

	_, err = sealer.Open("!!!not base64!!!")
	assert.Error(t, err)

	_, err = sealer.Open("YWJj") // valid base64, shorter than a nonce
	assert.Error(t, err)
}
