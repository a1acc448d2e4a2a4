package decorator

import (
	"encoding/base64"

	"logpipe/pkg/aead"
	"logpipe/pkg/record"
	"logpipe/pkg/errors"
	"logpipe/pkg/writer"
)

// Encrypted seals the record's message through a Cipher before handing it
// to the inner writer, base64-encoding the ciphertext so it stays safe for
// text-oriented sinks/formatters downstream. Adapted from
// _examples/original_source/src/impl/writers/encrypted_writer.cpp's
// encrypt-then-forward shape, behind the narrow Cipher interface pkg/aead
// defines.
type Encrypted struct {
	base
	cipher aead.Cipher
}

// NewEncrypted constructs an encrypting decorator over inner.
func NewEncrypted(inner writer.Writer, cipher aead.Cipher) (*Encrypted, error) {
	b, err := newBase("encrypted", inner)
	if err != nil {
		return nil, err
	}
	if cipher == nil {
		return nil, errors.InvalidArgument("encrypted", "new", "cipher must not be nil")
	}
	return &Encrypted{base: b, cipher: cipher}, nil
}

func (w *Encrypted) Write(r record.Record) error {
	sealed, err := w.cipher.Seal([]byte(r.Message))
	if err != nil {
		return errors.EncryptionFailed("encrypted", "write", err.Error()).Wrap(err)
	}
	derived := r.WithMessage(base64.StdEncoding.EncodeToString(sealed))
	return w.Inner().Write(derived)
}

var _ writer.Writer = (*Encrypted)(nil)
