package encoding

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Mode identifies a value encoding strategy.
type Mode string

// Supported encoding modes.
const (
	// ModePlain stores values unchanged.
	ModePlain Mode = "plain"

	// ModeBase64 stores values base64-encoded. Reversible by anyone;
	// useful only to keep casual eyes off the data file.
	ModeBase64 Mode = "base64"

	// ModeSecure stores values through the legacy keyed stream transform.
	ModeSecure Mode = "secure"

	// ModeSealed stores values encrypted with XChaCha20-Poly1305.
	ModeSealed Mode = "sealed"
)

// Codec transforms a logical value's string form into its storage form and back.
//
// Encode and Decode are exact inverses for every string a codec accepts:
// Decode(Encode(s)) == s. Codecs hold no mutable state after construction.
type Codec interface {
	// Encode transforms a value into its storage-safe string form.
	Encode(value string) (string, error)

	// Decode reverses Encode. Values written under a different secret or
	// mode surface ErrDecode where the mismatch is detectable.
	Decode(stored string) (string, error)

	// Mode reports which encoding strategy this codec implements.
	Mode() Mode
}

// New constructs the Codec for the given mode.
//
// The secret is required for the keyed modes (secure, sealed) and must be
// empty otherwise. It is consumed here, hashed into fixed-length key
// material, and not retained.
//
// Parameters:
//   - mode: Encoding strategy (case-insensitive)
//   - secret: Passphrase for the keyed modes
//
// Returns:
//   - Codec: Ready-to-use codec
//   - error: ErrUnknownMode or ErrSecretRequired
func New(mode Mode, secret string) (Codec, error) {
	switch Mode(strings.ToLower(string(mode))) {
	case ModePlain:
		return plainCodec{}, nil
	case ModeBase64:
		return base64Codec{}, nil
	case ModeSecure:
		if secret == "" {
			return nil, ErrSecretRequired
		}
		return newStreamCodec(secret), nil
	case ModeSealed:
		if secret == "" {
			return nil, ErrSecretRequired
		}
		return newSealedCodec(secret)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// plainCodec is the identity transform.
type plainCodec struct{}

func (plainCodec) Encode(value string) (string, error) { return value, nil }

func (plainCodec) Decode(stored string) (string, error) { return stored, nil }

func (plainCodec) Mode() Mode { return ModePlain }

// base64Codec obfuscates values with standard base64. It provides no
// secrecy; decode failures still map to ErrDecode so callers get one
// taxonomy across modes.
type base64Codec struct{}

func (base64Codec) Encode(value string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(value)), nil
}

func (base64Codec) Decode(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(raw), nil
}

func (base64Codec) Mode() Mode { return ModeBase64 }
