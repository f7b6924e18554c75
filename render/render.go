// Package render implements the schema-interpreted value renderer,
// spec.md §4.5: given a decoded item's value bytes and a schema.SemanticType,
// coerce the value to a printable form.
//
// Grounded on the teacher's (arloliu/mebo) one-file-per-encoding-strategy
// split (blob/numeric_raw.go, encoding/ts_delta.go, internal/encoding/numeric_gorilla.go),
// generalized to one file per renderer family: this file (dispatch + simple
// universal types), tgpp.go (3GPP identifiers), uli.go (user-location
// bitmap), enum.go (enum value tables), timeval.go (generalized/UTC time
// caching), ip.go (binary IP), domain.go (DNS label names), hex.go
// (hex-dump fallback).
package render

import (
	"strconv"
	"strings"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/errs"
	"github.com/wanderber/wanderber/schema"
)

// TimeConverter is the wall-clock/timezone external collaborator spec.md §6
// names (gmtime_r/localtime_r/strptime/mktime equivalents): it turns a
// generalized-time or UTC-time string into epoch seconds. The renderer
// treats it as a synchronous function call, spec.md §5.
type TimeConverter func(timeBytes []byte) (epochSeconds int64, err error)

// EncryptedRenderer renders an "Encrypted" semantic-type value, typically
// wired to crypt.Container.Render by the domain layer. Kept as a plain
// function value so this package does not import crypt (which itself
// depends on decoder to attach a secondary decoder over the plaintext).
type EncryptedRenderer func(value []byte) (string, error)

// Renderer holds the small amount of state spec.md §4.5 requires across
// calls: the generalized-time decode cache and the pluggable external
// collaborators.
type Renderer struct {
	TimeConvert TimeConverter
	Encrypted   EncryptedRenderer
	Tables      *EnumTables

	lastTimePrefix [14]byte
	lastTimeEpoch  int64
	lastTimeValid  bool
}

// New creates a Renderer with the default built-in enum tables.
func New() *Renderer {
	return &Renderer{Tables: DefaultEnumTables()}
}

// Render formats value as the given semantic type, writing at most
// len(dst)-1 bytes plus a NUL terminator for the fixed-buffer text types and
// returning the printable string either way. enumTableKey selects the enum
// table to use for SemanticType Enumerated and is ignored otherwise.
func (r *Renderer) Render(dst []byte, value []byte, as schema.SemanticType, enumTableKey string) (string, error) {
	switch as {
	case schema.OctetString, schema.UTF8String, schema.IA5String, schema.PrintableString:
		return copyBounded(dst, value), nil

	case schema.Boolean:
		if len(value) == 0 {
			return "", errs.ErrTruncatedBuffer
		}
		if value[0] == 0 {
			return "false", nil
		}

		return "true", nil

	case schema.Integer:
		v, err := ber.DecodeInteger(value)
		if err != nil {
			return "", err
		}

		return strconv.FormatInt(v, 10), nil

	case schema.IntegerSequence:
		return r.renderIntegerSequence(value)

	case schema.Enumerated:
		v, err := ber.DecodeInteger(value)
		if err != nil {
			return "", err
		}

		if r.Tables != nil {
			if name, ok := r.Tables.Lookup(enumTableKey, int(v)); ok {
				return name, nil
			}
		}

		return strconv.FormatInt(v, 10), nil

	case schema.Null:
		return "", nil

	case schema.OID:
		subs, err := ber.DecodeOID(value)
		if err != nil {
			return "", err
		}

		return joinOID(subs), nil

	case schema.RelativeOID:
		subs, err := ber.DecodeRelativeOID(value)
		if err != nil {
			return "", err
		}

		return joinOID(subs), nil

	case schema.GeneralizedTime, schema.UTCTime:
		return r.renderTime(value)

	case schema.BinaryIP, schema.IPPacket:
		return renderBinaryIP(value)

	case schema.IMEI3G:
		return renderPackedBCD(value), nil

	case schema.SMCause3G:
		v, err := ber.DecodeInteger(value)
		if err != nil {
			return "", err
		}

		return strconv.FormatInt(v, 10), nil

	case schema.CGI, schema.SAI, schema.LAI:
		return renderLAIFamily(value, as)

	case schema.TAI:
		return renderTAI(value)

	case schema.ECGI:
		return renderECGI(value)

	case schema.MacroENodeB:
		return renderMacroENodeB(value)

	case schema.ULI:
		return renderULI(value)

	case schema.EPSAPNAMBR:
		return renderAPNAMBR(value)

	case schema.DomainName:
		return renderDomainName(value), nil

	case schema.HexBytes:
		return copyBoundedHex(dst, value), nil

	case schema.Encrypted:
		if r.Encrypted == nil {
			return copyBoundedHex(dst, value), nil
		}

		s, err := r.Encrypted(value)
		if err != nil {
			return copyBoundedHex(dst, value), nil
		}

		return s, nil

	default:
		return copyBoundedHex(dst, value), nil
	}
}

// copyBounded copies up to len(dst)-1 bytes of value into dst and
// null-terminates it, spec.md §4.5 "copy up to output buffer size minus one,
// null-terminate", returning the resulting string regardless of whether dst
// was supplied (a nil/zero-length dst just skips the bounded copy).
func copyBounded(dst []byte, value []byte) string {
	if len(dst) > 0 {
		n := len(value)
		if n > len(dst)-1 {
			n = len(dst) - 1
		}

		copy(dst, value[:n])
		dst[n] = 0
	}

	return string(value)
}

func joinOID(subs []uint64) string {
	parts := make([]string, len(subs))
	for i, s := range subs {
		parts[i] = strconv.FormatUint(s, 10)
	}

	return strings.Join(parts, ".")
}

func (r *Renderer) renderIntegerSequence(value []byte) (string, error) {
	d := decodeSequenceOfIntegers(value)

	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = strconv.FormatInt(v, 10)
	}

	return strings.Join(parts, ","), nil
}

// decodeSequenceOfIntegers walks a constructed SEQUENCE OF INTEGER's content
// octets as a flat run of TLVs (the caller has already stripped the
// sequence's own tag/length).
func decodeSequenceOfIntegers(content []byte) []int64 {
	var out []int64

	pos := 0
	for pos < len(content) {
		_, _, idLen, err := ber.DecodeIdentifier(content[pos:])
		if err != nil {
			break
		}

		length, indefinite, lenLen, err := ber.DecodeLength(content[pos+idLen:], 8)
		if err != nil || indefinite {
			break
		}

		start := pos + idLen + lenLen
		end := start + length
		if end > len(content) {
			break
		}

		v, err := ber.DecodeInteger(content[start:end])
		if err == nil {
			out = append(out, v)
		}

		pos = end
	}

	return out
}
