// Package errs defines the sentinel errors shared across wanderber's
// packages. Callers should compare with errors.Is; call sites wrap a
// sentinel with additional context via fmt.Errorf("...: %w", errs.ErrX).
package errs

import "errors"

// Malformed input (spec.md §7 "Malformed input").
var (
	ErrTagTooLong            = errors.New("ber: identifier octets exceed maximum length")
	ErrLengthTooLong         = errors.New("ber: length octets exceed content-length width")
	ErrTruncatedBuffer       = errors.New("ber: buffer truncated before end of declared content")
	ErrIntegerTooLong        = errors.New("ber: integer value exceeds 8 bytes")
	ErrGeneralizedTimeShort  = errors.New("ber: generalized-time value shorter than 14 characters")
	ErrOIDContinuationTooLong = errors.New("ber: OID sub-identifier continuation exceeds 4 bytes")
	ErrInvalidTimeString     = errors.New("ber: unexpected non-ASCII byte in time string")
)

// Capacity (spec.md §7 "Capacity").
var (
	ErrBufferTooSmall = errors.New("ber: output buffer too small to hold encoded value")
	ErrRenderTooSmall = errors.New("render: destination buffer too small for requested interpretation")
)

// Schema (spec.md §7 "Schema").
var (
	ErrInterpretOutOfRange = errors.New("schema: interpret-as value out of the allowed universal-type range")
	ErrSchemaNodeMissing   = errors.New("schema: no schema node registered for context identifier")
	ErrUnsupportedEncodeAs = errors.New("encoder: unsupported encode-as semantic type")
)

// Decryption (spec.md §7 "Decryption").
var (
	ErrUnsupportedAlgorithm = errors.New("crypt: unsupported encryption algorithm")
	ErrKeyMissing           = errors.New("crypt: no decryption key available")
	ErrPlaintextNotASN1     = errors.New("crypt: decrypted plaintext does not begin with a SEQUENCE tag")
	ErrPlaintextLengthMismatch = errors.New("crypt: decrypted plaintext length does not match outer length plus padding")
)

// Programmer errors (spec.md §7 "Programmer").
var (
	ErrSkipBeforeNext  = errors.New("decoder: decode-skip called before any decode-next")
	ErrNilDecoder      = errors.New("decoder: operation attempted against a nil decoder")
	ErrCachedChildSet  = errors.New("decoder: cached-children already set for this item (programmer error)")
	ErrEndOfStream     = errors.New("decoder: end of stream")
	ErrNotFound        = errors.New("decoder: target identifier not found at this level")
	ErrBufferIdentityChanged = errors.New("decoder: underlying buffer changed since cache was built")
)

// Arena errors.
var (
	ErrArenaExhausted = errors.New("arena: blob allocation failed")
	ErrArenaDestroyed = errors.New("arena: handler used after destroy")
)
