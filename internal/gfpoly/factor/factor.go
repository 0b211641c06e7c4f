// Package factor implements the three-stage polynomial factorization
// pipeline over GF(2^128): square-free factorization (SFF),
// distinct-degree factorization (DDF), and equal-degree factorization
// (EDF, Cantor-Zassenhaus).
package factor

import (
	"math/big"

	"github.com/kauma-lab/kauma/internal/gf128"
	"github.com/kauma-lab/kauma/internal/gfpoly"
)

// qSize is q = |GF(2^128)| = 2^128, the field size DDF and EDF both
// exponentiate by.
var qSize = new(big.Int).Lsh(big.NewInt(1), 128)

// SFFFactor pairs a square-free factor with its multiplicity.
type SFFFactor struct {
	Factor   gfpoly.Poly
	Exponent int
}

// DDFFactor pairs the product of same-degree irreducible factors with
// that shared degree.
type DDFFactor struct {
	Factor gfpoly.Poly
	Degree int
}

// xPoly is the polynomial X = [0, 1].
func xPoly() gfpoly.Poly {
	return gfpoly.New(gf128.Zero, gf128.One)
}

// SFF is Yun's square-free factorization adapted to characteristic 2.
// F is required to be monic. When F' = 0 (all odd-degree coefficients
// vanish, which happens for every polynomial in X^2), gcd(F, 0) = F, so
// the loop below is skipped entirely and the recursion on sqrt(F) picks
// up, with multiplicities doubled.
func SFF(f gfpoly.Poly) []SFFFactor {
	fPrime := gfpoly.Derivative(f)
	var c gfpoly.Poly
	if fPrime.IsZero() {
		c = f
	} else {
		c = gfpoly.GCD(f, fPrime)
	}

	cur, _ := gfpoly.DivMod(f, c)
	var factors []SFFFactor
	e := 1
	for !cur.IsOne() {
		y := gfpoly.GCD(cur, c)
		if !y.Equal(cur) {
			fy, _ := gfpoly.DivMod(cur, y)
			if !fy.IsOne() {
				factors = append(factors, SFFFactor{Factor: fy, Exponent: e})
			}
		}
		cur = y
		c, _ = gfpoly.DivMod(c, y)
		e++
	}

	if !c.IsOne() {
		for _, sub := range SFF(gfpoly.Sqrt(c)) {
			factors = append(factors, SFFFactor{Factor: sub.Factor, Exponent: 2 * sub.Exponent})
		}
	}

	sortByFactor(factors)
	return factors
}

func sortByFactor(factors []SFFFactor) {
	polys := make([]gfpoly.Poly, len(factors))
	for i, f := range factors {
		polys[i] = f.Factor
	}
	idx := make([]int, len(factors))
	for i := range idx {
		idx[i] = i
	}
	// stable-sort the index permutation by the factor's total order,
	// then materialize factors in that order.
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && gfpoly.Compare(polys[idx[j-1]], polys[idx[j]]) > 0 {
			idx[j-1], idx[j] = idx[j], idx[j-1]
			j--
		}
	}
	sorted := make([]SFFFactor, len(factors))
	for i, k := range idx {
		sorted[i] = factors[k]
	}
	copy(factors, sorted)
}

// DDF is distinct-degree factorization over F_q, q = 2^128. F must be
// square-free and monic.
func DDF(f gfpoly.Poly) []DDFFactor {
	var z []DDFFactor
	d := 1
	cur := f
	x := xPoly()

	for cur.Degree() >= 2*d {
		qd := new(big.Int).Exp(qSize, big.NewInt(int64(d)), nil)
		h := gfpoly.PowMod(x, cur, qd)
		g := gfpoly.GCD(gfpoly.Add(h, x), cur)
		if !g.IsOne() {
			z = append(z, DDFFactor{Factor: g, Degree: d})
			cur, _ = gfpoly.DivMod(cur, g)
		}
		d++
	}
	if !cur.IsOne() {
		z = append(z, DDFFactor{Factor: cur, Degree: cur.Degree()})
	}
	if len(z) == 0 {
		z = append(z, DDFFactor{Factor: f, Degree: 1})
	}

	sortDDF(z)
	return z
}

func sortDDF(z []DDFFactor) {
	for i := 1; i < len(z); i++ {
		j := i
		for j > 0 && gfpoly.Compare(z[j-1].Factor, z[j].Factor) > 0 {
			z[j-1], z[j] = z[j], z[j-1]
			j--
		}
	}
}

// randomPoly draws a polynomial of degree strictly less than maxDeg
// with uniformly random coefficients and a non-zero leading
// coefficient, following the bounded-degree random-polynomial shape
// Cantor-Zassenhaus needs to try new splitting polynomials.
func randomPoly(rng RNG, maxDeg int) gfpoly.Poly {
	if maxDeg < 1 {
		maxDeg = 1
	}
	deg := int(rng.Uint64() % uint64(maxDeg))
	c := make([]gf128.Element, deg+1)
	for i := 0; i < deg; i++ {
		c[i] = randElement(rng)
	}
	c[deg] = randNonZeroElement(rng)
	return gfpoly.New(c...)
}

func randElement(rng RNG) gf128.Element {
	return gf128.Element{Lo: rng.Uint64(), Hi: rng.Uint64()}
}

func randNonZeroElement(rng RNG) gf128.Element {
	for {
		e := randElement(rng)
		if !e.IsZero() {
			return e
		}
	}
}

// EDF is Cantor-Zassenhaus equal-degree factorization: f is known to be
// the product of n = deg(f)/d distinct monic irreducibles of degree d.
func EDF(f gfpoly.Poly, d int, rng RNG) []gfpoly.Poly {
	n := f.Degree() / d
	z := []gfpoly.Poly{f}

	qd := new(big.Int).Exp(qSize, big.NewInt(int64(d)), nil)
	exponent := new(big.Int).Sub(qd, big.NewInt(1))
	exponent.Div(exponent, big.NewInt(3))

	for len(z) < n {
		h := randomPoly(rng, f.Degree()+1)
		g := gfpoly.PowMod(h, f, exponent)
		g = gfpoly.Add(g, gfpoly.One())

		next := make([]gfpoly.Poly, 0, len(z))
		for _, u := range z {
			if u.Degree() > d {
				j := gfpoly.GCD(u, g)
				if !j.IsOne() && !j.Equal(u) {
					uDivJ, _ := gfpoly.DivMod(u, j)
					next = append(next, j, uDivJ)
					continue
				}
			}
			next = append(next, u)
		}
		z = next
	}

	gfpoly.Sort(z)
	return z
}
