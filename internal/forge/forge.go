// Package forge implements the GCM nonce-reuse forgery: recovering the
// authentication subkey H from two authenticated-encryption outputs
// produced under an accidentally reused (key, nonce) pair, verifying
// the recovery against a third capture, and forging a tag for a target
// message under the recovered key.
package forge

import (
	"errors"

	"github.com/kauma-lab/kauma/internal/bitcodec"
	"github.com/kauma-lab/kauma/internal/gf128"
	"github.com/kauma-lab/kauma/internal/gfpoly"
	"github.com/kauma-lab/kauma/internal/gfpoly/factor"
	"github.com/kauma-lab/kauma/internal/ghash"
)

// ErrAttackFailed is returned when no recovered candidate verifies
// against the third capture: the two reused-nonce messages did not
// differ enough to pin down H, or every root the factorization produced
// was spurious.
var ErrAttackFailed = errors.New("forge: no candidate for H verified")

// Record is one captured AEAD output: the associated data and
// ciphertext GHASH actually consumed, plus the tag it produced.
type Record struct {
	AD         []byte
	Ciphertext []byte
	Tag        [16]byte
}

// Result is the recovered material: the subkey, its derived tag mask,
// and the forged tag for the target record.
type Result struct {
	Tag  [16]byte
	H    [16]byte
	EKY0 [16]byte
}

// polyForRecord builds G_i(Y) as described by the recovery: the
// coefficient sequence is the reverse of pad(AD)||pad(CT)||L||T, all
// blocks read in GCM semantic and converted once to field elements so
// the polynomial machinery in internal/gfpoly can operate on it.
func polyForRecord(r Record) gfpoly.Poly {
	blocks := append(ghash.Blocks(r.AD, r.Ciphertext), r.Tag)
	n := len(blocks)
	c := make([]gf128.Element, n)
	for i, b := range blocks {
		c[n-1-i] = gf128.FromXEXBytes(bitcodec.FromGCMSem(b))
	}
	return gfpoly.New(c...)
}

// candidates factors D = G1+G2, whose degree-1 roots are exactly the
// field elements H could be: every reused-nonce pair shares the same
// EKY0, so it cancels out of the sum and H becomes a root of D.
func candidates(g1, g2 gfpoly.Poly, rng factor.RNG) []gf128.Element {
	d := gfpoly.MakeMonic(gfpoly.Add(g1, g2))
	if d.IsZero() || d.IsOne() {
		return nil
	}

	seen := make(map[gf128.Element]bool)
	var out []gf128.Element
	for _, sff := range factor.SFF(d) {
		for _, ddf := range factor.DDF(sff.Factor) {
			if ddf.Degree != 1 {
				continue
			}
			for _, linear := range factor.EDF(ddf.Factor, 1, rng) {
				h := linear.C[0]
				if !seen[h] {
					seen[h] = true
					out = append(out, h)
				}
			}
		}
	}
	return out
}

// eky0For recomputes the tag mask implied by candidate H against a
// known-good capture: EKY0 = GHASH_H(stream) xor T.
func eky0For(hGCM [16]byte, r Record) [16]byte {
	sum := ghash.Sum(hGCM, ghash.Blocks(r.AD, r.Ciphertext))
	var eky0 [16]byte
	for i := range eky0 {
		eky0[i] = sum[i] ^ r.Tag[i]
	}
	return eky0
}

// tagFor computes the tag a capture would carry under the given H and
// EKY0: T = GHASH_H(stream) xor EKY0.
func tagFor(hGCM [16]byte, eky0 [16]byte, ad, ciphertext []byte) [16]byte {
	sum := ghash.Sum(hGCM, ghash.Blocks(ad, ciphertext))
	var tag [16]byte
	for i := range tag {
		tag[i] = sum[i] ^ eky0[i]
	}
	return tag
}

// Recover implements the full attack: build the difference polynomial
// from two reused-(key,nonce) captures, factor it for candidate
// authentication keys, verify each against a third capture, and forge
// the tag a fourth (target) message would carry under the same key and
// nonce.
//
// rng drives EDF's internal trial polynomials; callers wanting
// reproducible output should pass a seeded generator.
func Recover(msg1, msg2, msg3 Record, targetAD, targetCiphertext []byte, rng factor.RNG) (Result, error) {
	g1 := polyForRecord(msg1)
	g2 := polyForRecord(msg2)

	for _, h := range candidates(g1, g2, rng) {
		hGCM := bitcodec.ToGCMSem(h.Bytes())
		eky0 := eky0For(hGCM, msg1)

		if tagFor(hGCM, eky0, msg3.AD, msg3.Ciphertext) != msg3.Tag {
			continue
		}

		return Result{
			Tag:  tagFor(hGCM, eky0, targetAD, targetCiphertext),
			H:    hGCM,
			EKY0: eky0,
		}, nil
	}

	return Result{}, ErrAttackFailed
}
