package encoding

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// keyMixFactor is the multiplier applied to each key rune before it is
// mixed into the value stream. Chosen by the legacy format; changing it
// breaks compatibility with existing data files.
const keyMixFactor = 27

// streamCodec is the legacy keyed transform: each rune of the value is
// shifted by a multiple of the corresponding key-stream rune, and the
// result is wrapped in base64 for storage.
//
// This is obfuscation, not encryption: the key stream repeats across
// records and nothing authenticates the ciphertext. It is kept for
// compatibility with data written by earlier tooling; use sealedCodec
// when actual secrecy is needed.
type streamCodec struct {
	// key is the hex digest of SHA-512(secret), used as the key stream seed.
	key []rune
}

// newStreamCodec derives the key stream from the caller's secret.
// The secret itself is not retained.
func newStreamCodec(secret string) *streamCodec {
	sum := sha512.Sum512([]byte(secret))
	return &streamCodec{key: []rune(hex.EncodeToString(sum[:]))}
}

// Encode shifts each value rune by its key-stream rune and base64-wraps
// the result. Empty input is a caller error.
func (c *streamCodec) Encode(value string) (string, error) {
	if value == "" {
		return "", ErrEmptyInput
	}

	in := []rune(value)
	key := extendKey(c.key, len(in))

	out := make([]rune, len(in))
	for i, r := range in {
		mixed := r + keyMixFactor*key[i]
		if !utf8.ValidRune(mixed) {
			return "", fmt.Errorf("encoding: rune %q not representable under secure transform", r)
		}
		out[i] = mixed
	}

	return base64.StdEncoding.EncodeToString([]byte(string(out))), nil
}

// Decode unwraps the base64 layer and reverses the key-stream shift.
// A value written under a different secret generally fails the UTF-8
// check after unwrapping and surfaces ErrDecode.
func (c *streamCodec) Decode(stored string) (string, error) {
	if stored == "" {
		return "", ErrEmptyInput
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: ciphertext is not valid text (wrong secret?)", ErrDecode)
	}

	in := []rune(string(raw))
	key := extendKey(c.key, len(in))

	out := make([]rune, len(in))
	for i, r := range in {
		shifted := r - keyMixFactor*key[i]
		// Under the matching key stream the subtraction is exact, so a
		// negative or invalid rune means the value was written under a
		// different secret.
		if shifted < 0 || !utf8.ValidRune(shifted) {
			return "", fmt.Errorf("%w: key stream mismatch (wrong secret?)", ErrDecode)
		}
		out[i] = shifted
	}

	return string(out), nil
}

func (c *streamCodec) Mode() Mode { return ModeSecure }

// extendKey grows the key stream to at least n runes by appending its own
// reverse (the legacy palindromic extension), then truncates to exactly n.
// The seed slice is never mutated, so codecs stay safe for concurrent use.
func extendKey(seed []rune, n int) []rune {
	key := make([]rune, len(seed), max(len(seed)*2, n))
	copy(key, seed)
	for len(key) < n {
		for i := len(key) - 1; i >= 0; i-- {
			key = append(key, key[i])
		}
	}
	return key[:n]
}
