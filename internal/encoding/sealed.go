package encoding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo binds derived keys to this codec so the same secret used
// elsewhere does not yield the same key material.
const hkdfInfo = "veildb sealed codec v1"

// sealedCodec encrypts values with XChaCha20-Poly1305. Unlike the legacy
// stream transform, ciphertexts are authenticated: decoding under the
// wrong secret or after tampering always fails with ErrDecode.
//
// Nonces are synthesised from the plaintext (SIV-style, HMAC-SHA256 under
// a separate derived key), so encoding is deterministic and equality
// predicates keep working against sealed columns. The tradeoff is the
// usual one for deterministic encryption: equal plaintexts produce equal
// stored forms.
//
// Stored form: base64(nonce || ciphertext || tag).
type sealedCodec struct {
	encKey   []byte
	nonceKey []byte
}

// newSealedCodec derives the encryption and nonce keys from the secret
// via HKDF-SHA256. The secret itself is not retained.
func newSealedCodec(secret string) (*sealedCodec, error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))

	c := &sealedCodec{
		encKey:   make([]byte, chacha20poly1305.KeySize),
		nonceKey: make([]byte, sha256.Size),
	}
	if _, err := io.ReadFull(kdf, c.encKey); err != nil {
		return nil, fmt.Errorf("deriving sealed key: %w", err)
	}
	if _, err := io.ReadFull(kdf, c.nonceKey); err != nil {
		return nil, fmt.Errorf("deriving nonce key: %w", err)
	}
	return c, nil
}

// Encode seals the value under its synthetic nonce.
func (c *sealedCodec) Encode(value string) (string, error) {
	if value == "" {
		return "", ErrEmptyInput
	}

	aead, err := chacha20poly1305.NewX(c.encKey)
	if err != nil {
		return "", fmt.Errorf("initialising cipher: %w", err)
	}

	mac := hmac.New(sha256.New, c.nonceKey)
	mac.Write([]byte(value)) //nolint:errcheck // hash writes cannot fail
	nonce := mac.Sum(nil)[:aead.NonceSize()]

	sealed := aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decode opens a sealed value. Any authentication failure maps to ErrDecode.
func (c *sealedCodec) Decode(stored string) (string, error) {
	if stored == "" {
		return "", ErrEmptyInput
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	aead, err := chacha20poly1305.NewX(c.encKey)
	if err != nil {
		return "", fmt.Errorf("initialising cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%w: stored value too short", ErrDecode)
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed (wrong secret or tampered data)", ErrDecode)
	}

	return string(plain), nil
}

func (c *sealedCodec) Mode() Mode { return ModeSealed }
