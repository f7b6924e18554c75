// Package crypt implements the encrypted-container consumer, spec.md §6
// "Encrypted container": a constructed sequence of (encryption-type,
// encrypted-payload, encrypted-payload-type) that, for AES-192-CBC
// containers, decrypts the payload and attaches a second decoder over the
// plaintext for recursive rendering.
//
// The AES primitive itself is an external collaborator spec.md §6 names
// explicitly ("consumed through an interface providing AES-192-CBC
// decryption and derived IV"); this package defines that interface
// (Decryptor) rather than importing crypto/aes directly, grounded on the
// teacher's compress/codec.go Compressor/Decompressor/Codec factory split
// (one small interface per algorithm, selected by an enumeration).
package crypt

import (
	"bytes"
	"os"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/decoder"
	"github.com/wanderber/wanderber/errs"
)

// EncryptionType enumerates the values spec.md §6 documents for the
// container's leading enum field.
type EncryptionType int

const (
	EncryptionPlaintext EncryptionType = 1
	_                   EncryptionType = 2 // reserved
	EncryptionAES192CBC EncryptionType = 3
)

// Decryptor is the external AES-192-CBC collaborator: given a key, a
// 16-byte IV and ciphertext, it produces plaintext of equal length.
// Implementations are expected to wrap crypto/aes + crypto/cipher's CBC
// decrypter, which this package deliberately does not call directly so the
// primitive stays swappable per spec.md §1's "deliberately out of scope"
// list.
type Decryptor interface {
	DecryptCBC(key, iv, ciphertext []byte) ([]byte, error)
}

// keyEnvVar is the fallback key source spec.md §6 names: consulted only
// when no key has been set programmatically via Container.SetKey.
const keyEnvVar = "LIBWANDDER_ETSILI_DECRYPTION_KEY"

// Container decodes and, for AES-192-CBC payloads, decrypts one encrypted
// container value. It is safe for reuse across multiple containers sharing
// the same key.
type Container struct {
	Decryptor Decryptor
	key       []byte
}

// SetKey installs a key to use, taking precedence over the environment
// variable fallback.
func (c *Container) SetKey(key []byte) {
	c.key = key
}

func (c *Container) resolveKey() ([]byte, bool) {
	if len(c.key) > 0 {
		return c.key, true
	}

	if v, ok := os.LookupEnv(keyEnvVar); ok && v != "" {
		return []byte(v), true
	}

	return nil, false
}

// Result is the outcome of decoding one encrypted container.
type Result struct {
	Type       EncryptionType
	Plaintext  []byte
	PayloadTag int
	// Inner is a decoder attached over the plaintext for recursive
	// rendering, spec.md §6 "attaches a second decoder over the plaintext",
	// populated whenever Open succeeds, for plaintext and decrypted
	// containers alike.
	Inner *decoder.Decoder
}

// deriveIV builds the 16-byte CBC IV as four big-endian repetitions of the
// record's sequence number, spec.md §8 "IV determinism".
func deriveIV(sequenceNumber uint32) []byte {
	iv := make([]byte, 16)
	for i := 0; i < 4; i++ {
		iv[i*4+0] = byte(sequenceNumber >> 24)
		iv[i*4+1] = byte(sequenceNumber >> 16)
		iv[i*4+2] = byte(sequenceNumber >> 8)
		iv[i*4+3] = byte(sequenceNumber)
	}

	return iv
}

// Open decodes a container value (the constructed sequence's content
// octets, with the outer tag/length already stripped by the caller's
// decoder) and, for an AES-192-CBC payload, decrypts it and attaches a
// secondary decoder. sequenceNumber is the owning record's sequence number,
// used to derive the IV.
//
// content is expected to hold three TLVs in order: an INTEGER
// encryption-type, an OCTET STRING encrypted payload, and an INTEGER
// encrypted-payload-type tag. Fields are read positionally via a scratch
// decoder rather than the shared one the caller is mid-walk with.
func (c *Container) Open(content []byte, sequenceNumber uint32) (*Result, error) {
	d := decoder.NewDecoder(4)
	d.Attach(content, false)

	typeItem, err := d.Next()
	if err != nil {
		return nil, err
	}
	encType, err := ber.DecodeInteger(d.Value(typeItem))
	if err != nil {
		return nil, err
	}

	payloadItem, err := d.Next()
	if err != nil {
		return nil, err
	}
	payload := d.Value(payloadItem)

	payloadTypeItem, err := d.Next()
	if err != nil {
		return nil, err
	}
	payloadType, err := ber.DecodeInteger(d.Value(payloadTypeItem))
	if err != nil {
		return nil, err
	}

	res := &Result{Type: EncryptionType(encType), PayloadTag: int(payloadType)}

	switch res.Type {
	case EncryptionPlaintext:
		res.Plaintext = payload
		res.Inner = attachInner(payload)
		return res, nil

	case EncryptionAES192CBC:
		plain, err := c.decryptAES192CBC(payload, sequenceNumber)
		if err != nil {
			return nil, err
		}

		res.Plaintext = plain
		res.Inner = attachInner(plain)
		return res, nil

	default:
		return nil, errs.ErrUnsupportedAlgorithm
	}
}

func (c *Container) decryptAES192CBC(ciphertext []byte, sequenceNumber uint32) ([]byte, error) {
	if c.Decryptor == nil {
		return nil, errs.ErrUnsupportedAlgorithm
	}

	key, ok := c.resolveKey()
	if !ok {
		return nil, errs.ErrKeyMissing
	}

	iv := deriveIV(sequenceNumber)

	plain, err := c.Decryptor.DecryptCBC(key, iv, ciphertext)
	if err != nil {
		return nil, err
	}

	if err := sanityCheckPlaintext(plain); err != nil {
		return nil, err
	}

	return plain, nil
}

// aesBlockSize is the CBC block size: the maximum PKCS-style padding gap a
// correctly-keyed decrypt can leave between the declared outer content and
// the actual (block-rounded) plaintext length.
const aesBlockSize = 16

// sanityCheckPlaintext applies spec.md §6/§7's decryption error checks: the
// first plaintext byte must be 0x30 (a BER SEQUENCE tag, since the
// plaintext is itself an encoded PDU), and the declared outer length must
// account for the full plaintext within one CBC block's padding gap --
// headerLen + declaredContentLen + gap == len(plain), with 0 <= gap < 16.
// A wrong key decrypts to noise that only coincidentally starts with 0x30
// in the overwhelming majority of cases; this check is what actually catches
// it, since CBC decryption always returns exactly len(ciphertext) bytes.
func sanityCheckPlaintext(plain []byte) error {
	if len(plain) == 0 || plain[0] != 0x30 {
		return errs.ErrPlaintextNotASN1
	}

	_, _, idLen, err := ber.DecodeIdentifier(plain)
	if err != nil {
		return errs.ErrPlaintextNotASN1
	}

	if idLen >= len(plain) {
		return errs.ErrPlaintextLengthMismatch
	}

	contentLen, indefinite, lenConsumed, err := ber.DecodeLength(plain[idLen:], 8)
	if err != nil {
		return errs.ErrPlaintextLengthMismatch
	}
	if indefinite {
		return errs.ErrPlaintextLengthMismatch
	}

	headerLen := idLen + lenConsumed
	gap := len(plain) - headerLen - contentLen

	if gap < 0 || gap >= aesBlockSize {
		return errs.ErrPlaintextLengthMismatch
	}

	return nil
}

func attachInner(plaintext []byte) *decoder.Decoder {
	d := decoder.NewDecoder(8)
	d.Attach(bytes.Clone(plaintext), true)

	return d
}

// Render opens an Encrypted-semantic-type container value and renders its
// whole plaintext as hex. Any error from Open (including a missing
// decryptor or key) is returned as is; Render itself has no hex fallback.
// render.Renderer.Encrypted can wrap it, and Renderer.Render falls back to
// a hex dump of the raw value when that function returns an error.
func (c *Container) Render(value []byte, sequenceNumber uint32) (string, error) {
	res, err := c.Open(value, sequenceNumber)
	if err != nil {
		return "", err
	}

	return hexString(res.Plaintext), nil
}

func hexString(value []byte) string {
	const digits = "0123456789abcdef"

	out := make([]byte, 2+len(value)*2)
	out[0], out[1] = '0', 'x'

	for i, b := range value {
		out[2+i*2] = digits[b>>4]
		out[2+i*2+1] = digits[b&0x0f]
	}

	return string(out)
}
