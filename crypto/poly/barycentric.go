package poly

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// EvaluateBarycentric evaluates at z the polynomial given by its values over
// a domain, using the barycentric formula
//
//	y = (zⁿ - 1) / n * Σᵢ (dᵢ * ωᵢ / (z - ωᵢ))
//
// roots and evals must be in the same order (both bit-reversed for blobs).
// If z is one of the roots the matching evaluation is returned directly.
func EvaluateBarycentric(roots, evals []fr.Element, z *fr.Element) (fr.Element, error) {
	var y fr.Element
	n := len(roots)
	if n == 0 || len(evals) != n {
		return y, fmt.Errorf("barycentric evaluation: %d roots and %d evaluations", n, len(evals))
	}

	denominators := make([]fr.Element, n)
	for i := range roots {
		denominators[i].Sub(z, &roots[i])
		if denominators[i].IsZero() {
			return evals[i], nil
		}
	}
	denominators = fr.BatchInvert(denominators)

	var term fr.Element
	for i := range evals {
		if evals[i].IsZero() {
			continue
		}
		term.Mul(&evals[i], &roots[i]).Mul(&term, &denominators[i])
		y.Add(&y, &term)
	}

	// (zⁿ - 1) / n
	var factor, nInv fr.Element
	one := fr.One()
	factor.Exp(*z, big.NewInt(int64(n)))
	factor.Sub(&factor, &one)
	nInv.SetUint64(uint64(n)).Inverse(&nInv)
	factor.Mul(&factor, &nInv)
	y.Mul(&y, &factor)
	return y, nil
}
