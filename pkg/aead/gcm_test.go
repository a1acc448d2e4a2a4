package aead_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/aead"
)

func TestGCMCipherSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := aead.NewGCMCipher("k1", key)
	require.NoError(t, err)

	plaintext := []byte("disk usage at 97% on /var/log")
	sealed, err := c.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestGCMCipherSealIsNonDeterministic(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, 32)
	c, err := aead.NewGCMCipher("k1", key)
	require.NoError(t, err)

	a, err := c.Seal([]byte("same message"))
	require.NoError(t, err)
	b, err := c.Seal([]byte("same message"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "random nonce must make repeated seals of identical plaintext differ")
}

func TestGCMCipherOpenRejectsTamperedCiphertext(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	c, err := aead.NewGCMCipher("k1", key)
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("authentic"))
	require.NoError(t, err)
	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = c.Open(tampered)
	assert.Error(t, err)
}

func TestGCMCipherRejectsWrongKeySize(t *testing.T) {
	_, err := aead.NewGCMCipher("bad", []byte("too short"))
	assert.Error(t, err)
}

func TestGCMCipherKeyID(t *testing.T) {
	c, err := aead.NewGCMCipher("primary", bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)
	assert.Equal(t, "primary", c.KeyID())
}
