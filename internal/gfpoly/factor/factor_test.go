package factor

import (
	"testing"

	"github.com/kauma-lab/kauma/internal/bitcodec"
	"github.com/kauma-lab/kauma/internal/gf128"
	"github.com/kauma-lab/kauma/internal/gfpoly"
)

// polyFromGCMB64 decodes a list of base64 GCM-semantic blocks into a
// Poly, ascending by index, matching the wire format internal/dispatch
// uses for every polynomial-valued action argument.
func polyFromGCMB64(t *testing.T, blocks ...string) gfpoly.Poly {
	t.Helper()
	c := make([]gf128.Element, len(blocks))
	for i, s := range blocks {
		b, err := bitcodec.B64ToBlock(s)
		if err != nil {
			t.Fatalf("B64ToBlock(%q): %v", s, err)
		}
		c[i] = gf128.FromXEXBytes(bitcodec.FromGCMSem(b))
	}
	return gfpoly.New(c...)
}

func polyToGCMB64(p gfpoly.Poly) []string {
	out := make([]string, len(p.C))
	for i, c := range p.C {
		out[i] = bitcodec.BlockToB64(bitcodec.ToGCMSem(c.Bytes()))
	}
	return out
}

// linear builds the monic linear factor (X + a); any two distinct field
// elements give distinct linear factors in characteristic 2.
func linear(a gf128.Element) gfpoly.Poly {
	return gfpoly.New(a, gf128.One)
}

func e(lo uint64) gf128.Element {
	return gf128.Element{Lo: lo}
}

func TestSFFReconstructsMonicPart(t *testing.T) {
	l1 := linear(e(1))
	l2 := linear(e(2))
	l3 := linear(e(3))

	// F = l1 * l2^2 * l3^3, a square-free-factorization textbook shape.
	l2sq, _ := gfpoly.Pow(l2, 2)
	l3cb, _ := gfpoly.Pow(l3, 3)
	f := gfpoly.Mul(gfpoly.Mul(l1, l2sq), l3cb)

	factors := SFF(f)
	if len(factors) == 0 {
		t.Fatalf("expected at least one factor")
	}

	product := gfpoly.One()
	for _, fac := range factors {
		p, err := gfpoly.Pow(fac.Factor, fac.Exponent)
		if err != nil {
			t.Fatalf("Pow error: %v", err)
		}
		product = gfpoly.Mul(product, p)
	}
	if !product.Equal(f) {
		t.Fatalf("SFF does not reconstruct F:\nF=%s\nproduct=%s", f, product)
	}
}

func TestDDFGroupsByDegree(t *testing.T) {
	l1 := linear(e(5))
	l2 := linear(e(9))
	f := gfpoly.Mul(l1, l2)

	groups := DDF(f)
	product := gfpoly.One()
	for _, g := range groups {
		product = gfpoly.Mul(product, g.Factor)
		if g.Degree < 1 {
			t.Fatalf("degree must be positive, got %d", g.Degree)
		}
	}
	if !product.Equal(f) {
		t.Fatalf("DDF groups do not reconstruct F:\nF=%s\nproduct=%s", f, product)
	}
}

func TestGfpolyMulVector(t *testing.T) {
	a := polyFromGCMB64(t,
		"JAAAAAAAAAAAAAAAAAAAAA==",
		"wAAAAAAAAAAAAAAAAAAAAA==",
		"ACAAAAAAAAAAAAAAAAAAAA==",
	)
	b := polyFromGCMB64(t,
		"0AAAAAAAAAAAAAAAAAAAAA==",
		"IQAAAAAAAAAAAAAAAAAAAA==",
	)
	want := []string{
		"MoAAAAAAAAAAAAAAAAAAAA==",
		"sUgAAAAAAAAAAAAAAAAAAA==",
		"MbQAAAAAAAAAAAAAAAAAAA==",
		"AAhAAAAAAAAAAAAAAAAAAA==",
	}

	got := polyToGCMB64(gfpoly.Mul(a, b))
	if len(got) != len(want) {
		t.Fatalf("gfpoly_mul produced %d coefficients, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gfpoly_mul coefficient %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSFFVector(t *testing.T) {
	f := polyFromGCMB64(t,
		"vL77UwAAAAAAAAAAAAAAAA==",
		"mEHchYAAAAAAAAAAAAAAAA==",
		"9WJa0MAAAAAAAAAAAAAAAA==",
		"akHfwWAAAAAAAAAAAAAAAA==",
		"E12o/QAAAAAAAAAAAAAAAA==",
		"vKJ/FgAAAAAAAAAAAAAAAA==",
		"yctWwAAAAAAAAAAAAAAAAA==",
		"c1BXYAAAAAAAAAAAAAAAAA==",
		"o0AtAAAAAAAAAAAAAAAAAA==",
		"AbP2AAAAAAAAAAAAAAAAAA==",
		"k2YAAAAAAAAAAAAAAAAAAA==",
		"vBYAAAAAAAAAAAAAAAAAAA==",
		"dSAAAAAAAAAAAAAAAAAAAA==",
		"69gAAAAAAAAAAAAAAAAAAA==",
		"VkAAAAAAAAAAAAAAAAAAAA==",
		"a4AAAAAAAAAAAAAAAAAAAA==",
		"gAAAAAAAAAAAAAAAAAAAAA==",
	)

	factors := SFF(f)
	if len(factors) != 3 {
		t.Fatalf("SFF returned %d factors, want 3: %+v", len(factors), factors)
	}

	wantExponents := []int{1, 2, 3}
	wantFactors := [][]string{
		{
			"q4AAAAAAAAAAAAAAAAAAAA==",
			"gAAAAAAAAAAAAAAAAAAAAA==",
		},
		{
			"iwAAAAAAAAAAAAAAAAAAAA==",
			"CAAAAAAAAAAAAAAAAAAAAA==",
			"AAAAAAAAAAAAAAAAAAAAAA==",
			"gAAAAAAAAAAAAAAAAAAAAA==",
		},
		{
			"kAAAAAAAAAAAAAAAAAAAAA==",
			"CAAAAAAAAAAAAAAAAAAAAA==",
			"wAAAAAAAAAAAAAAAAAAAAA==",
			"gAAAAAAAAAAAAAAAAAAAAA==",
		},
	}

	for i, fac := range factors {
		if fac.Exponent != wantExponents[i] {
			t.Fatalf("factor %d exponent = %d, want %d", i, fac.Exponent, wantExponents[i])
		}
		want := polyFromGCMB64(t, wantFactors[i]...)
		if !fac.Factor.Equal(want) {
			t.Fatalf("factor %d = %s, want %s", i, fac.Factor, want)
		}
	}
}

func TestDDFVector(t *testing.T) {
	f := polyFromGCMB64(t,
		"tpkgAAAAAAAAAAAAAAAAAA==",
		"m6MQAAAAAAAAAAAAAAAAAA==",
		"8roAAAAAAAAAAAAAAAAAAA==",
		"3dUAAAAAAAAAAAAAAAAAAA==",
		"FwAAAAAAAAAAAAAAAAAAAA==",
		"/kAAAAAAAAAAAAAAAAAAAA==",
		"a4AAAAAAAAAAAAAAAAAAAA==",
		"gAAAAAAAAAAAAAAAAAAAAA==",
	)

	groups := DDF(f)
	if len(groups) != 2 {
		t.Fatalf("DDF returned %d groups, want 2: %+v", len(groups), groups)
	}

	wantDegrees := []int{1, 3}
	wantFactors := [][]string{
		{
			"q4AAAAAAAAAAAAAAAAAAAA==",
			"gAAAAAAAAAAAAAAAAAAAAA==",
		},
		{
			"mmAAAAAAAAAAAAAAAAAAAA==",
			"AbAAAAAAAAAAAAAAAAAAAA==",
			"zgAAAAAAAAAAAAAAAAAAAA==",
			"FwAAAAAAAAAAAAAAAAAAAA==",
			"AAAAAAAAAAAAAAAAAAAAAA==",
			"wAAAAAAAAAAAAAAAAAAAAA==",
			"gAAAAAAAAAAAAAAAAAAAAA==",
		},
	}

	for i, g := range groups {
		if g.Degree != wantDegrees[i] {
			t.Fatalf("group %d degree = %d, want %d", i, g.Degree, wantDegrees[i])
		}
		want := polyFromGCMB64(t, wantFactors[i]...)
		if !g.Factor.Equal(want) {
			t.Fatalf("group %d factor = %s, want %s", i, g.Factor, want)
		}
	}
}

func TestEDFSplitsDistinctLinearFactors(t *testing.T) {
	l1 := linear(e(11))
	l2 := linear(e(13))
	l3 := linear(e(17))
	f := gfpoly.Mul(gfpoly.Mul(l1, l2), l3)

	rng := NewSeededRNG(1234)
	factors := EDF(f, 1, rng)
	if len(factors) != 3 {
		t.Fatalf("expected 3 linear factors, got %d", len(factors))
	}
	product := gfpoly.One()
	for _, fac := range factors {
		if fac.Degree() != 1 {
			t.Fatalf("expected degree-1 factor, got degree %d", fac.Degree())
		}
		product = gfpoly.Mul(product, fac)
	}
	if !product.Equal(f) {
		t.Fatalf("EDF factors do not reconstruct F:\nF=%s\nproduct=%s", f, product)
	}
}
