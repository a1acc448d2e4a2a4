package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// GCMCipher is the reference Cipher implementation: AES-256-GCM with a
// random nonce prepended to each ciphertext.
type GCMCipher struct {
	keyID string
	aead  cipher.AEAD
}

// NewGCMCipher builds a GCMCipher from a 32-byte key. keyID is an opaque
// label used only for audit/diagnostic purposes, never for key derivation.
func NewGCMCipher(keyID string, key []byte) (*GCMCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aead: invalid key: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aead: gcm init: %w", err)
	}
	return &GCMCipher{keyID: keyID, aead: gcm}, nil
}

func (c *GCMCipher) KeyID() string { return c.keyID }

func (c *GCMCipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("aead: nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *GCMCipher) Open(ciphertext []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, fmt.Errorf("aead: ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:n], ciphertext[n:]
	return c.aead.Open(nil, nonce, sealed, nil)
}

var _ Cipher = (*GCMCipher)(nil)
