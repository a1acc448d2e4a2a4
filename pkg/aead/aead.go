// Package aead defines the narrow authenticated-encryption interface the
// encrypted decorator consumes; callers supply whatever concrete cipher
// fits their key management. One reference Cipher is provided over the
// standard library's crypto/aes + crypto/cipher (AES-256-GCM); no example
// repo wires a third-party AEAD library, so the canonical stdlib
// primitive is used instead of a hand-rolled substitute (see DESIGN.md).
package aead

// Cipher is the narrow AEAD contract the encrypted decorator depends on.
// Implementations must be safe for concurrent use.
type Cipher interface {
	// Seal encrypts and authenticates plaintext, returning a self-describing
	// ciphertext (nonce prefix + ciphertext + tag).
	Seal(plaintext []byte) ([]byte, error)
	// Open authenticates and decrypts a value produced by Seal.
	Open(ciphertext []byte) ([]byte, error)
	// KeyID identifies which key produced/should open a ciphertext, for
	// audit logging (encryption_key_loaded/rotated/generated events).
	KeyID() string
}
