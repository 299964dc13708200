// Package poly implements the coefficient-form polynomial arithmetic needed
// by the commitment protocol and the recovery engine.
package poly

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// ErrDegreeBound is returned when a division would produce an empty quotient.
var ErrDegreeBound = errors.New("polynomial degree is lower than the divisor")

// Polynomial is a polynomial in coefficient form, lowest degree first.
type Polynomial []fr.Element

// Evaluate returns p(x) using Horner's rule.
func (p Polynomial) Evaluate(x *fr.Element) fr.Element {
	var res fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		res.Mul(&res, x).Add(&res, &p[i])
	}
	return res
}

// Degree returns the degree of p, ignoring leading zero coefficients. The
// zero polynomial has degree -1.
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return -1
}

// Add returns a + b.
func Add(a, b Polynomial) Polynomial {
	if len(a) < len(b) {
		a, b = b, a
	}
	res := make(Polynomial, len(a))
	copy(res, a)
	for i := range b {
		res[i].Add(&res[i], &b[i])
	}
	return res
}

// Mul returns a * b using schoolbook multiplication. It is meant for the
// small polynomials built from a handful of roots.
func Mul(a, b Polynomial) Polynomial {
	if len(a) == 0 || len(b) == 0 {
		return Polynomial{}
	}
	res := make(Polynomial, len(a)+len(b)-1)
	var t fr.Element
	for i := range a {
		if a[i].IsZero() {
			continue
		}
		for j := range b {
			t.Mul(&a[i], &b[j])
			res[i+j].Add(&res[i+j], &t)
		}
	}
	return res
}

// DivideByLinear returns the quotient of p by (X - z), dropping the
// remainder, which equals p(z).
func DivideByLinear(p Polynomial, z *fr.Element) (Polynomial, error) {
	if len(p) < 2 {
		return nil, ErrDegreeBound
	}
	q := make(Polynomial, len(p)-1)
	var carry fr.Element
	for i := len(p) - 1; i >= 1; i-- {
		carry.Mul(&carry, z).Add(&carry, &p[i])
		q[i-1] = carry
	}
	return q, nil
}

// DivideByMonomialFloor returns ⌊p / X^k⌋, i.e. the coefficients of p from
// index k upwards. The returned slice aliases p.
func DivideByMonomialFloor(p Polynomial, k int) (Polynomial, error) {
	if k >= len(p) {
		return nil, ErrDegreeBound
	}
	return p[k:], nil
}

// Vanishing returns the monic polynomial whose roots are exactly xs.
func Vanishing(xs []fr.Element) Polynomial {
	res := Polynomial{fr.One()}
	for i := range xs {
		var negX fr.Element
		negX.Neg(&xs[i])
		res = Mul(res, Polynomial{negX, fr.One()})
	}
	return res
}

// DivideByBinomial divides p by X^k - a and returns quotient and remainder.
// The remainder has at most k coefficients.
func DivideByBinomial(p Polynomial, k int, a *fr.Element) (Polynomial, Polynomial) {
	rem := make(Polynomial, len(p))
	copy(rem, p)
	if len(p) <= k {
		return Polynomial{}, rem
	}
	q := make(Polynomial, len(p)-k)
	var t fr.Element
	for i := len(p) - 1; i >= k; i-- {
		q[i-k] = rem[i]
		t.Mul(&rem[i], a)
		rem[i-k].Add(&rem[i-k], &t)
		rem[i].SetZero()
	}
	return q, rem[:k]
}
