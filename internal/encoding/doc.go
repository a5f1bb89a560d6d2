// Package encoding transforms logical values into storage-safe strings and back.
//
// Every value written through the record gateway passes through exactly one
// Codec, selected by the encoding.mode configuration key and fixed for the
// lifetime of the store handle. Four modes are provided:
//
//   - plain:  identity, values stored as-is
//   - base64: reversible text obfuscation, no confidentiality
//   - secure: keyed reversible stream transform (obfuscation-grade, see below)
//   - sealed: authenticated encryption (XChaCha20-Poly1305)
//
// Security Considerations:
//   - "secure" is NOT cryptographic-strength: the transform is a toy stream
//     mix with key reuse across records and no authentication. It exists for
//     compatibility with data written by earlier tooling. New deployments
//     that need secrecy should use "sealed".
//   - Secrets are hashed into key material once at construction and never
//     retained in plaintext beyond process memory.
//
// Error Handling:
//   - A decode against the wrong secret surfaces ErrDecode rather than
//     returning garbled data wherever the corruption is detectable.
//   - Empty input to the keyed codecs is a caller error (ErrEmptyInput).
//
// All codecs are pure value transforms and safe for concurrent use.
package encoding
