package crypt_test

import (
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/crypt"
)

type aesCBCDecryptor struct{}

func (aesCBCDecryptor) DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)

	return out, nil
}

func encryptCBC(t *testing.T, key, iv, plaintext []byte) []byte {
	t.Helper()

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)

	return out
}

func buildContainer(t *testing.T, encType int64, payload []byte, payloadType int64) []byte {
	t.Helper()

	enc := []byte{0x02, 0x01, byte(encType)}
	pl := append([]byte{0x04, byte(len(payload))}, payload...)
	pt := []byte{0x02, 0x01, byte(payloadType)}

	var out []byte
	out = append(out, enc...)
	out = append(out, pl...)
	out = append(out, pt...)

	return out
}

func TestIVDerivationIsSequenceRepeatedFourTimes(t *testing.T) {
	key := make([]byte, 24) // AES-192
	iv := make([]byte, 16)
	seq := uint32(0x01020304)
	for i := 0; i < 4; i++ {
		iv[i*4+0] = 0x01
		iv[i*4+1] = 0x02
		iv[i*4+2] = 0x03
		iv[i*4+3] = 0x04
	}

	// 16-byte plaintext block beginning with the SEQUENCE tag so the
	// sanity check passes.
	plaintext := make([]byte, 16)
	plaintext[0] = 0x30
	plaintext[1] = 14

	ciphertext := encryptCBC(t, key, iv, plaintext)

	c := &crypt.Container{Decryptor: aesCBCDecryptor{}}
	c.SetKey(key)

	container := buildContainer(t, int64(crypt.EncryptionAES192CBC), ciphertext, 1)

	res, err := c.Open(container, seq)
	require.NoError(t, err)
	require.Equal(t, plaintext, res.Plaintext)
	require.NotNil(t, res.Inner)
}

func TestOpenRejectsMissingKey(t *testing.T) {
	c := &crypt.Container{Decryptor: aesCBCDecryptor{}}
	container := buildContainer(t, int64(crypt.EncryptionAES192CBC), make([]byte, 16), 1)

	_, err := c.Open(container, 1)
	require.Error(t, err)
}

func TestOpenRejectsLengthInconsistentPlaintext(t *testing.T) {
	key := make([]byte, 24) // AES-192
	iv := make([]byte, 16)
	seq := uint32(1)

	// Starts with a SEQUENCE tag but declares a content length wildly out
	// of step with the actual (block-rounded) plaintext size -- the shape
	// a wrong-key decrypt that happens to produce 0x30 as its first byte
	// would have, since CBC decryption never changes the output length.
	plaintext := make([]byte, 16)
	plaintext[0] = 0x30
	plaintext[1] = 126 // declares 126 content bytes in a 16-byte buffer

	ciphertext := encryptCBC(t, key, iv, plaintext)

	c := &crypt.Container{Decryptor: aesCBCDecryptor{}}
	c.SetKey(key)

	container := buildContainer(t, int64(crypt.EncryptionAES192CBC), ciphertext, 1)

	_, err := c.Open(container, seq)
	require.Error(t, err)
}

func TestOpenPlaintextPassesThrough(t *testing.T) {
	c := &crypt.Container{}
	payload := []byte{0x30, 0x02, 0x01, 0x00}

	container := buildContainer(t, int64(crypt.EncryptionPlaintext), payload, 1)

	res, err := c.Open(container, 1)
	require.NoError(t, err)
	require.Equal(t, payload, res.Plaintext)
}
