// Package blockcipher provides the single-block cipher oracles the GCM
// core treats as opaque external collaborators: AES-128 in ECB mode,
// and "SEA-128", a variant that XORs the AES-ECB output with a fixed
// 128-bit constant. Neither primitive is part of the cryptanalytic
// core; both are specified here purely through the enc(key,
// block)->block / dec(key, block)->block interface the core consumes.
package blockcipher

import (
	"crypto/aes"
	"fmt"
)

// Cipher is the interface the GCM/GHASH/XEX layers consume: a
// single-block encrypt/decrypt oracle keyed by a 16-byte key.
type Cipher interface {
	Encrypt(key, block [16]byte) ([16]byte, error)
	Decrypt(key, block [16]byte) ([16]byte, error)
}

// AES128 is plain AES-128 in ECB mode, applied to exactly one block.
type AES128 struct{}

func (AES128) Encrypt(key, block [16]byte) ([16]byte, error) {
	var out [16]byte
	c, err := aes.NewCipher(key[:])
	if err != nil {
		return out, fmt.Errorf("blockcipher: aes key setup: %w", err)
	}
	c.Encrypt(out[:], block[:])
	return out, nil
}

func (AES128) Decrypt(key, block [16]byte) ([16]byte, error) {
	var out [16]byte
	c, err := aes.NewCipher(key[:])
	if err != nil {
		return out, fmt.Errorf("blockcipher: aes key setup: %w", err)
	}
	c.Decrypt(out[:], block[:])
	return out, nil
}

// seaConstant is SEA-128's fixed 128-bit XOR mask, big-endian, the same
// constant the reference implementation this toolkit was modeled on
// hard-codes.
var seaConstant = [16]byte{
	0xc0, 0xff, 0xee, 0xc0, 0xff, 0xee, 0xc0, 0xff,
	0xee, 0xc0, 0xff, 0xee, 0xc0, 0xff, 0xee, 0x11,
}

// SEA128 is AES-128-ECB with its output XORed against seaConstant. It
// is its own mirror image: decrypting means undoing the XOR before
// inverting AES, since XOR commutes with nothing here except itself.
type SEA128 struct{}

func (SEA128) Encrypt(key, block [16]byte) ([16]byte, error) {
	out, err := AES128{}.Encrypt(key, block)
	if err != nil {
		return out, err
	}
	return xor16(out, seaConstant), nil
}

func (SEA128) Decrypt(key, block [16]byte) ([16]byte, error) {
	masked := xor16(block, seaConstant)
	return AES128{}.Decrypt(key, masked)
}

func xor16(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// ByName resolves the algorithm names the dispatcher's action catalogue
// accepts ("aes128"/"aes", "sea128"/"sea") to a Cipher.
func ByName(name string) (Cipher, error) {
	switch name {
	case "aes128", "aes", "AES":
		return AES128{}, nil
	case "sea128", "sea", "SEA":
		return SEA128{}, nil
	default:
		return nil, fmt.Errorf("blockcipher: unknown algorithm %q", name)
	}
}
