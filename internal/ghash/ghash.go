// Package ghash implements GHASH, the universal hash GCM builds its
// authentication tag from, plus the AES-GCM ("SEA-GCM" when the
// underlying cipher is SEA-128) authenticated encryption wrapper.
package ghash

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/kauma-lab/kauma/internal/bitcodec"
	"github.com/kauma-lab/kauma/internal/blockcipher"
	"github.com/kauma-lab/kauma/internal/gf128"
)

// Sum evaluates GHASH over a sequence of 128-bit blocks under key h,
// all in GCM semantic. Internally the running value and every block are
// converted once to the canonical XEX-semantic field element, which is
// where Add/Mul actually operate; only the final output is converted
// back to GCM semantic.
//
//	Y0 = 0
//	Yi = (Y[i-1] xor Bi) * H
//	return Ym
func Sum(hGCM [16]byte, blocksGCM [][16]byte) [16]byte {
	h := gf128.FromXEXBytes(bitcodec.FromGCMSem(hGCM))
	y := gf128.Zero
	for _, b := range blocksGCM {
		bi := gf128.FromXEXBytes(bitcodec.FromGCMSem(b))
		y = gf128.Mul(gf128.Add(y, bi), h)
	}
	return bitcodec.ToGCMSem(y.Bytes())
}

// pad zero-pads data to a multiple of 16 bytes. Empty input yields no
// blocks at all.
func pad(data []byte) [][16]byte {
	if len(data) == 0 {
		return nil
	}
	n := (len(data) + 15) / 16
	out := make([][16]byte, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], data[i*16:min(len(data), (i+1)*16)])
	}
	return out
}

// padAD is pad, except empty associated data is represented as exactly
// one zero block rather than zero blocks.
func padAD(ad []byte) [][16]byte {
	blocks := pad(ad)
	if len(blocks) == 0 {
		blocks = [][16]byte{{}}
	}
	return blocks
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// LengthBlock builds the 16-byte big-endian length block
// len(AD_bits) || len(CT_bits), in GCM semantic (GHASH consumes it
// directly as a block like any other).
func LengthBlock(adLen, ctLen int) [16]byte {
	var l [16]byte
	binary.BigEndian.PutUint64(l[0:8], uint64(adLen)*8)
	binary.BigEndian.PutUint64(l[8:16], uint64(ctLen)*8)
	return l
}

// Blocks builds the GHASH input for an AEAD record excluding the final
// tag: pad(AD) || pad(CT) || L. internal/forge reuses this to rebuild
// the same polynomial both when assembling the nonce-reuse difference
// polynomial and when verifying a recovered authentication key.
func Blocks(ad, ciphertext []byte) [][16]byte {
	blocks := padAD(ad)
	blocks = append(blocks, pad(ciphertext)...)
	blocks = append(blocks, LengthBlock(len(ad), len(ciphertext)))
	return blocks
}

// Result is everything an AEAD encryption exposes, including the
// length block and authentication key — both needed by the nonce-reuse
// forgery in internal/forge.
type Result struct {
	Ciphertext []byte
	Tag        [16]byte
	L          [16]byte
	H          [16]byte
}

func counterBlock(nonce [12]byte, ctr uint32) [16]byte {
	var y [16]byte
	copy(y[:12], nonce[:])
	binary.BigEndian.PutUint32(y[12:], ctr)
	return y
}

func xorKeystream(cipher blockcipher.Cipher, key [16]byte, nonce [12]byte, startCtr uint32, data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	ctr := startCtr
	for off := 0; off < len(data); off += 16 {
		y := counterBlock(nonce, ctr)
		s, err := cipher.Encrypt(key, y)
		if err != nil {
			return nil, err
		}
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		for i := off; i < end; i++ {
			out[i] = data[i] ^ s[i-off]
		}
		ctr++
	}
	return out, nil
}

// Encrypt implements the GCM construction: a 12-byte nonce, a keystream
// generated in counter mode starting at counter 2 (counter 1 is
// reserved for the tag mask), and a GHASH-based tag over
// pad(AD) || pad(CT) || L.
func Encrypt(cipher blockcipher.Cipher, key [16]byte, nonce [12]byte, plaintext, ad []byte) (Result, error) {
	h, err := cipher.Encrypt(key, [16]byte{})
	if err != nil {
		return Result{}, fmt.Errorf("ghash: deriving H: %w", err)
	}

	ciphertext, err := xorKeystream(cipher, key, nonce, 2, plaintext)
	if err != nil {
		return Result{}, fmt.Errorf("ghash: keystream: %w", err)
	}

	l := LengthBlock(len(ad), len(ciphertext))
	blocks := Blocks(ad, ciphertext)
	tPrime := Sum(h, blocks)

	eky0, err := cipher.Encrypt(key, counterBlock(nonce, 1))
	if err != nil {
		return Result{}, fmt.Errorf("ghash: tag mask: %w", err)
	}

	var tag [16]byte
	for i := range tag {
		tag[i] = eky0[i] ^ tPrime[i]
	}

	return Result{Ciphertext: ciphertext, Tag: tag, L: l, H: h}, nil
}

// DecryptResult carries the advisory authenticity flag alongside the
// recovered plaintext: a tag mismatch does not prevent the plaintext
// from being returned, it only flags it as untrusted.
type DecryptResult struct {
	Authentic bool
	Plaintext []byte
}

// Decrypt recomputes the keystream and the expected tag, comparing in
// constant time via crypto/subtle.
func Decrypt(cipher blockcipher.Cipher, key [16]byte, nonce [12]byte, ciphertext, ad []byte, tag [16]byte) (DecryptResult, error) {
	plaintext, err := xorKeystream(cipher, key, nonce, 2, ciphertext)
	if err != nil {
		return DecryptResult{}, fmt.Errorf("ghash: keystream: %w", err)
	}

	check, err := Encrypt(cipher, key, nonce, plaintext, ad)
	if err != nil {
		return DecryptResult{}, err
	}

	authentic := subtle.ConstantTimeCompare(check.Tag[:], tag[:]) == 1
	return DecryptResult{Authentic: authentic, Plaintext: plaintext}, nil
}
