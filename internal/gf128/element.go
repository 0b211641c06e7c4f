// Package gf128 implements arithmetic in GF(2^128) = GF(2)[x] /
// (x^128 + x^7 + x^2 + x + 1), the field underlying AES-GCM's GHASH.
//
// Element is the canonical, allocation-light carrier: a 128-bit value
// stored as two uint64 words in XEX semantic (Lo holds bits 0..63, Hi
// holds bits 64..127; bit k corresponds to the coefficient of x^k). GCM
// semantic — the byte-wise bit-reversed form GHASH actually uses on the
// wire — is converted to and from Element only at package boundaries
// (see internal/bitcodec and internal/ghash), so every arithmetic method
// here operates on a single, consistent representation.
package gf128

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

// ErrDivByZero is returned by Inv and Div when asked to invert zero.
var ErrDivByZero = errors.New("gf128: division by zero")

// reductionPoly is x^128 + x^7 + x^2 + x + 1 expressed as a 129-bit
// big.Int, used only by Inv's extended-Euclid step.
var reductionPoly = func() *big.Int {
	r := new(big.Int).SetUint64(0x87)
	r.SetBit(r, 128, 1)
	return r
}()

var mask128 = func() *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), 128)
	return m.Sub(m, big.NewInt(1))
}()

// Element is a value in GF(2^128), canonical XEX semantic.
type Element struct {
	Lo, Hi uint64
}

// Zero and One are the field's additive and multiplicative identities.
var (
	Zero = Element{}
	One  = Element{Lo: 1}
)

// FromXEXBytes reads a 16-byte little-endian block as an Element.
func FromXEXBytes(b [16]byte) Element {
	return Element{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// Bytes writes the element back out as a 16-byte little-endian block.
func (a Element) Bytes() [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint64(out[0:8], a.Lo)
	binary.LittleEndian.PutUint64(out[8:16], a.Hi)
	return out
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool {
	return a.Lo == 0 && a.Hi == 0
}

// Equal reports whether a and b represent the same field element.
func (a Element) Equal(b Element) bool {
	return a.Lo == b.Lo && a.Hi == b.Hi
}

// Add returns a+b. Characteristic 2: addition is XOR.
func Add(a, b Element) Element {
	return Element{Lo: a.Lo ^ b.Lo, Hi: a.Hi ^ b.Hi}
}

func (a Element) shiftLeft1() Element {
	return Element{
		Lo: a.Lo << 1,
		Hi: a.Hi<<1 | a.Lo>>63,
	}
}

func (a Element) shiftRight1() Element {
	return Element{
		Lo: a.Lo>>1 | a.Hi<<63,
		Hi: a.Hi >> 1,
	}
}

func (a Element) bit127() uint64 {
	return a.Hi >> 63
}

// Mul returns a*b mod (x^128+x^7+x^2+x+1) using the iterative
// shift-and-XOR "Russian peasant" method: while B is non-zero, XOR A
// into the accumulator whenever B's low bit is set, then double A
// (reducing modulo the field polynomial whenever the doubling
// overflows bit 127) and halve B.
func Mul(a, b Element) Element {
	A, B := a, b
	var p Element
	for !B.IsZero() {
		if B.Lo&1 == 1 {
			p = Add(p, A)
		}
		carry := A.bit127()
		A = A.shiftLeft1()
		if carry == 1 {
			A.Lo ^= 0x87
		}
		B = B.shiftRight1()
	}
	return p
}

func (a Element) toBig() *big.Int {
	hi := new(big.Int).SetUint64(a.Hi)
	hi.Lsh(hi, 64)
	lo := new(big.Int).SetUint64(a.Lo)
	return hi.Or(hi, lo)
}

func fromBig(b *big.Int) Element {
	b = new(big.Int).And(b, mask128)
	lo := new(big.Int).And(b, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(b, 64)
	return Element{Lo: lo.Uint64(), Hi: hi.Uint64()}
}

// Inv computes the multiplicative inverse of a via the extended
// Euclidean algorithm over GF(2)[x], using the field's reduction
// polynomial as the modulus. It fails with ErrDivByZero for a=0.
//
// The loop maintains (u, v, g1, g2) = (a, R, 1, 0) and, while u != 1,
// swaps (u,v) and (g1,g2) whenever u has fewer bits than v, then
// reduces u by v shifted to align leading bits, applying the same
// shift to g1/g2. g1 converges to a^-1.
func Inv(a Element) (Element, error) {
	if a.IsZero() {
		return Zero, fmt.Errorf("gf128: inverse of zero: %w", ErrDivByZero)
	}
	u := a.toBig()
	v := new(big.Int).Set(reductionPoly)
	g1 := big.NewInt(1)
	g2 := big.NewInt(0)

	one := big.NewInt(1)
	for u.Cmp(one) != 0 {
		if u.BitLen() < v.BitLen() {
			u, v = v, u
			g1, g2 = g2, g1
		}
		s := u.BitLen() - v.BitLen()
		shifted := new(big.Int).Lsh(v, uint(s))
		u = new(big.Int).Xor(u, shifted)
		shiftedG := new(big.Int).Lsh(g2, uint(s))
		g1 = new(big.Int).Xor(g1, shiftedG)
	}
	return fromBig(g1), nil
}

// Div returns a/b = a * Inv(b).
func Div(a, b Element) (Element, error) {
	inv, err := Inv(b)
	if err != nil {
		return Zero, err
	}
	return Mul(a, inv), nil
}

// Square returns a*a.
func Square(a Element) Element {
	return Mul(a, a)
}

// Sqrt returns the unique square root of a. Because x -> x^2 is the
// Frobenius endomorphism of a characteristic-2 field and its order
// divides 128, a's square root is a^(2^127); 127 repeated squarings of
// a reach that power directly, with no intervening multiplies needed.
func Sqrt(a Element) Element {
	x := a
	for i := 0; i < 127; i++ {
		x = Square(x)
	}
	return x
}

func (a Element) String() string {
	return fmt.Sprintf("%016x%016x", a.Hi, a.Lo)
}

// Compare gives a total order on elements by their 128-bit unsigned
// integer value (Hi most significant), used by the polynomial total
// order in internal/gfpoly.
func Compare(a, b Element) int {
	if a.Hi != b.Hi {
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	}
	if a.Lo != b.Lo {
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	}
	return 0
}
