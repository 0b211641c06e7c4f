// Package xex implements the XEX disk-sector encryption mode built
// trivially from a block cipher and GF(2^128) multiplication, as used
// by disk/sector encryption schemes such as IEEE P1619. It is
// implemented here purely as a thin consumer of internal/blockcipher
// and internal/gf128, exercised by the dispatcher's "xex" action.
package xex

import (
	"fmt"

	"github.com/kauma-lab/kauma/internal/blockcipher"
	"github.com/kauma-lab/kauma/internal/gf128"
)

// alpha is the tweak-doubling constant X (coefficient x^1), expressed
// directly as an XEX-semantic Element: this mode's tweak arithmetic is
// native XEX semantic, which is in fact where that semantic's name
// comes from.
var alpha = gf128.Element{Lo: 2}

// splitKey divides the 32-byte XEX key into (data-block key, tweak key)
// the same way the reference implementation does: the first 16 bytes
// encrypt data blocks, the last 16 bytes encrypt the tweak.
func splitKey(key [32]byte) (dataKey, tweakKey [16]byte) {
	copy(dataKey[:], key[:16])
	copy(tweakKey[:], key[16:])
	return
}

func sliceBlocks(data []byte) ([][16]byte, error) {
	if len(data)%16 != 0 {
		return nil, fmt.Errorf("xex: input length %d is not a multiple of 16", len(data))
	}
	blocks := make([][16]byte, len(data)/16)
	for i := range blocks {
		copy(blocks[i][:], data[i*16:(i+1)*16])
	}
	return blocks, nil
}

func xor16(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func process(cipher blockcipher.Cipher, key [32]byte, tweak [16]byte, input []byte, encrypt bool) ([]byte, error) {
	dataKey, tweakKey := splitKey(key)

	blocks, err := sliceBlocks(input)
	if err != nil {
		return nil, err
	}

	encTweak, err := cipher.Encrypt(tweakKey, tweak)
	if err != nil {
		return nil, fmt.Errorf("xex: encrypting tweak: %w", err)
	}
	tweakElem := gf128.FromXEXBytes(encTweak)

	out := make([]byte, 0, len(input))
	for _, block := range blocks {
		t := tweakElem.Bytes()
		masked := xor16(t, block)

		var transformed [16]byte
		if encrypt {
			transformed, err = cipher.Encrypt(dataKey, masked)
		} else {
			transformed, err = cipher.Decrypt(dataKey, masked)
		}
		if err != nil {
			return nil, fmt.Errorf("xex: block cipher: %w", err)
		}

		result := xor16(t, transformed)
		out = append(out, result[:]...)

		tweakElem = gf128.Mul(tweakElem, alpha)
	}
	return out, nil
}

// Encrypt encrypts input (a multiple of 16 bytes) under key/tweak.
func Encrypt(cipher blockcipher.Cipher, key [32]byte, tweak [16]byte, input []byte) ([]byte, error) {
	return process(cipher, key, tweak, input, true)
}

// Decrypt decrypts input (a multiple of 16 bytes) under key/tweak.
func Decrypt(cipher blockcipher.Cipher, key [32]byte, tweak [16]byte, input []byte) ([]byte, error) {
	return process(cipher, key, tweak, input, false)
}
