// Package gfpoly implements the univariate polynomial ring GF(2^128)[X]:
// addition, multiplication, exponentiation, division with remainder,
// modular exponentiation, GCD, formal derivative, square root,
// monicization, and the total order used for sorting factor lists.
package gfpoly

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/kauma-lab/kauma/internal/bitcodec"
	"github.com/kauma-lab/kauma/internal/gf128"
)

// ErrDivByZero distinguishes field division by zero (an error) from
// polynomial division by the zero polynomial, which is not an error per
// the dividend/zero convention documented on DivMod.
var ErrDivByZero = gf128.ErrDivByZero

// Poly is a finite sequence of field elements [c0, c1, ..., cd]
// representing sum(ci * X^i). C[len(C)-1] is the leading coefficient.
// The zero polynomial is always represented as a single coefficient
// [0]; Degree() for it is therefore 0.
type Poly struct {
	C []gf128.Element
}

// New builds a normalized polynomial from coefficients in ascending
// exponent order.
func New(coeffs ...gf128.Element) Poly {
	return Poly{C: normalize(append([]gf128.Element(nil), coeffs...))}
}

// Zero and One are the additive and multiplicative identities.
func Zero() Poly { return Poly{C: []gf128.Element{gf128.Zero}} }
func One() Poly  { return Poly{C: []gf128.Element{gf128.One}} }

func normalize(c []gf128.Element) []gf128.Element {
	if len(c) == 0 {
		return []gf128.Element{gf128.Zero}
	}
	n := len(c)
	for n > 1 && c[n-1].IsZero() {
		n--
	}
	return c[:n]
}

// Degree returns len(C)-1. For the zero polynomial this is 0 by the
// convention above.
func (p Poly) Degree() int {
	return len(p.C) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool {
	return len(p.C) == 1 && p.C[0].IsZero()
}

// IsOne reports whether p is the unit polynomial [1].
func (p Poly) IsOne() bool {
	return len(p.C) == 1 && p.C[0].Equal(gf128.One)
}

// Equal compares two polynomials coefficient-wise after normalization.
func (p Poly) Equal(q Poly) bool {
	if len(p.C) != len(q.C) {
		return false
	}
	for i := range p.C {
		if !p.C[i].Equal(q.C[i]) {
			return false
		}
	}
	return true
}

// Leading returns the leading (highest-degree) coefficient.
func (p Poly) Leading() gf128.Element {
	return p.C[len(p.C)-1]
}

// Add returns p+q: coefficient-wise XOR, normalized.
func Add(p, q Poly) Poly {
	n := len(p.C)
	if len(q.C) > n {
		n = len(q.C)
	}
	c := make([]gf128.Element, n)
	for i := 0; i < n; i++ {
		var a, b gf128.Element
		if i < len(p.C) {
			a = p.C[i]
		}
		if i < len(q.C) {
			b = q.C[i]
		}
		c[i] = gf128.Add(a, b)
	}
	return Poly{C: normalize(c)}
}

// Mul returns p*q via schoolbook convolution.
func Mul(p, q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return Zero()
	}
	c := make([]gf128.Element, len(p.C)+len(q.C)-1)
	for i, pi := range p.C {
		if pi.IsZero() {
			continue
		}
		for j, qj := range q.C {
			c[i+j] = gf128.Add(c[i+j], gf128.Mul(pi, qj))
		}
	}
	return Poly{C: normalize(c)}
}

// Pow returns p^k for k>=0 via naive repeated multiplication; callers
// should only use this for small k (see PowMod for modular
// exponentiation with large exponents).
func Pow(p Poly, k int) (Poly, error) {
	if k < 0 {
		return Poly{}, fmt.Errorf("gfpoly: negative exponent %d: %w", k, errBadArgument)
	}
	result := One()
	for i := 0; i < k; i++ {
		result = Mul(result, p)
	}
	return result, nil
}

var errBadArgument = errors.New("gfpoly: bad argument")

// DivMod performs classical long division, returning (Q, R) such that
// P = Q*D + R with deg(R) < deg(D), or R the zero polynomial.
//
// Division by the zero polynomial is not an error: it conventionally
// returns (0, P).
func DivMod(p, d Poly) (q, r Poly) {
	if d.IsZero() {
		return Zero(), p
	}
	if p.IsZero() {
		return Zero(), Zero()
	}
	if p.Degree() < d.Degree() {
		return Zero(), p
	}

	dDeg := d.Degree()
	lD := d.Leading()
	qDeg := p.Degree() - dDeg
	qc := make([]gf128.Element, qDeg+1)
	rc := append([]gf128.Element(nil), p.C...)

	cur := p.Degree()
	for cur >= dDeg {
		lead := rc[cur]
		if lead.IsZero() {
			cur--
			continue
		}
		quotCoeff, err := gf128.Div(lead, lD)
		if err != nil {
			// lD is the leading coefficient of a normalized, non-zero
			// polynomial, so it is never zero; this is unreachable.
			panic(err)
		}
		shift := cur - dDeg
		qc[shift] = quotCoeff
		for i := 0; i <= dDeg; i++ {
			rc[shift+i] = gf128.Add(rc[shift+i], gf128.Mul(quotCoeff, d.C[i]))
		}
		cur--
	}
	if cur < 0 {
		return Poly{C: normalize(qc)}, Zero()
	}
	return Poly{C: normalize(qc)}, Poly{C: normalize(rc[:cur+1])}
}

// PowMod computes base^k mod m via square-and-multiply, reducing modulo
// m after every squaring and every multiply. k=0 returns 1; k=1 returns
// base mod m.
func PowMod(base, m Poly, k *big.Int) Poly {
	if k.Sign() == 0 {
		return One()
	}
	result := One()
	b := base
	_, b = DivMod(b, m)
	for i := k.BitLen() - 1; i >= 0; i-- {
		result = Mul(result, result)
		_, result = DivMod(result, m)
		if k.Bit(i) == 1 {
			result = Mul(result, b)
			_, result = DivMod(result, m)
		}
	}
	return result
}

// GCD computes gcd(p,q) via the Euclidean algorithm, returning the
// monicized last non-zero remainder. DivMod already treats a
// smaller-degree dividend as "quotient 0, remainder itself", so the
// loop below needs no explicit operand swap to keep the larger-degree
// polynomial as the dividend.
func GCD(p, q Poly) Poly {
	x, y := p, q
	for !y.IsZero() {
		_, r := DivMod(x, y)
		x, y = y, r
	}
	return MakeMonic(x)
}

// Derivative returns the formal derivative of p. In characteristic 2,
// d/dX(ci*X^i) = i*ci*X^(i-1) vanishes whenever i is even, so only the
// odd-index coefficients survive, shifted down by one.
func Derivative(p Poly) Poly {
	deg := p.Degree()
	if deg == 0 {
		return Zero()
	}
	c := make([]gf128.Element, deg)
	for i := 1; i <= deg; i += 2 {
		c[i-1] = p.C[i]
	}
	return Poly{C: normalize(c)}
}

// Sqrt returns the square root of p, valid only when p is actually a
// square (SFF invokes this exclusively in that situation): take the
// coefficients at even positions and field-square-root each one.
func Sqrt(p Poly) Poly {
	c := make([]gf128.Element, 0, (len(p.C)+1)/2)
	for i := 0; i < len(p.C); i += 2 {
		c = append(c, gf128.Sqrt(p.C[i]))
	}
	return Poly{C: normalize(c)}
}

// MakeMonic divides every coefficient by the leading one, yielding a
// polynomial whose leading coefficient is 1. The zero polynomial has no
// leading unit to divide by and is returned unchanged.
func MakeMonic(p Poly) Poly {
	if p.IsZero() {
		return p
	}
	lead := p.Leading()
	if lead.Equal(gf128.One) {
		return p
	}
	c := make([]gf128.Element, len(p.C))
	for i, ci := range p.C {
		v, err := gf128.Div(ci, lead)
		if err != nil {
			panic(err) // lead is non-zero by construction
		}
		c[i] = v
	}
	return Poly{C: normalize(c)}
}

// gcmOrderKey returns the element whose little-endian integer value is
// the GCM-semantic reading of c, used only to realize the total order
// specified for Compare/Sort.
func gcmOrderKey(c gf128.Element) gf128.Element {
	return gf128.FromXEXBytes(bitcodec.ToGCMSem(c.Bytes()))
}

// Compare implements the polynomial total order: lexicographic by
// (degree ascending, then coefficients in GCM-semantic 128-bit integer
// value, compared from the highest-degree coefficient down to the
// constant term).
func Compare(a, b Poly) int {
	if a.Degree() != b.Degree() {
		if a.Degree() < b.Degree() {
			return -1
		}
		return 1
	}
	for i := a.Degree(); i >= 0; i-- {
		c := gf128.Compare(gcmOrderKey(a.C[i]), gcmOrderKey(b.C[i]))
		if c != 0 {
			return c
		}
	}
	return 0
}

// Sort stably sorts polys in place by the total order and returns it
// for convenience.
func Sort(polys []Poly) []Poly {
	sort.SliceStable(polys, func(i, j int) bool {
		return Compare(polys[i], polys[j]) < 0
	})
	return polys
}

func (p Poly) String() string {
	s := "["
	for i, c := range p.C {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + "]"
}
