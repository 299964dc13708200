// Package kzg implements the KZG polynomial commitment scheme over
// BLS12-381: single point openings and multi-point openings over cosets of a
// subgroup of roots of unity.
package kzg

import (
	"errors"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/bls"
)

// ErrInvalidSRS is returned when the structured reference string is not
// usable: wrong sizes or first elements different from the generators.
var ErrInvalidSRS = errors.New("invalid structured reference string")

// SRS holds the powers of the setup secret τ in both groups, in monomial
// form: G1[i] = [τ^i]₁ and G2[i] = [τ^i]₂.
type SRS struct {
	G1 []bls12381.G1Affine
	G2 []bls12381.G2Affine
}

// NewSRS validates and wraps the given powers of τ. At least two G2 points
// are required to verify single point openings.
func NewSRS(g1 []bls12381.G1Affine, g2 []bls12381.G2Affine) (*SRS, error) {
	if len(g1) == 0 {
		return nil, fmt.Errorf("%w: no G1 points", ErrInvalidSRS)
	}
	if len(g2) < 2 {
		return nil, fmt.Errorf("%w: %d G2 points, need at least 2", ErrInvalidSRS, len(g2))
	}
	g1Gen, g2Gen := bls.G1Generator(), bls.G2Generator()
	if !g1[0].Equal(&g1Gen) {
		return nil, fmt.Errorf("%w: first G1 point is not the generator", ErrInvalidSRS)
	}
	if !g2[0].Equal(&g2Gen) {
		return nil, fmt.Errorf("%w: first G2 point is not the generator", ErrInvalidSRS)
	}
	return &SRS{G1: g1, G2: g2}, nil
}

// InsecureSRS derives an SRS from a known secret. Anyone knowing the secret
// can forge proofs, so it must only be used for tests and development.
func InsecureSRS(secret *big.Int, g1Len, g2Len int) (*SRS, error) {
	if g1Len <= 0 || g2Len < 2 {
		return nil, fmt.Errorf("%w: sizes %d/%d", ErrInvalidSRS, g1Len, g2Len)
	}
	var tau fr.Element
	tau.SetBigInt(secret)
	if tau.IsZero() {
		return nil, fmt.Errorf("%w: zero secret", ErrInvalidSRS)
	}
	powers := Powers(tau, max(g1Len, g2Len))

	g1Gen, g2Gen := bls.G1Generator(), bls.G2Generator()
	g1 := bls12381.BatchScalarMultiplicationG1(&g1Gen, powers[:g1Len])
	g2 := bls12381.BatchScalarMultiplicationG2(&g2Gen, powers[:g2Len])
	// τ⁰ = 1 must map exactly to the generators
	g1[0], g2[0] = g1Gen, g2Gen
	return NewSRS(g1, g2)
}

// Powers returns [1, x, x², ..., x^(n-1)].
func Powers(x fr.Element, n int) []fr.Element {
	if n <= 0 {
		return nil
	}
	res := make([]fr.Element, n)
	res[0].SetOne()
	for i := 1; i < n; i++ {
		res[i].Mul(&res[i-1], &x)
	}
	return res
}

// CommitKey returns the key used to commit to polynomials of up to len(G1)
// coefficients.
func (s *SRS) CommitKey() *CommitKey {
	return &CommitKey{G1: s.G1}
}

// OpeningKey returns the key used to verify openings. maxCosetSize is the
// largest coset over which multi-point openings are verified, which requires
// [τ^maxCosetSize]₂ to be present.
func (s *SRS) OpeningKey(maxCosetSize int) (*OpeningKey, error) {
	if maxCosetSize >= len(s.G2) {
		return nil, fmt.Errorf("%w: %d G2 points cannot verify cosets of size %d",
			ErrInvalidSRS, len(s.G2), maxCosetSize)
	}
	if maxCosetSize > len(s.G1) {
		return nil, fmt.Errorf("%w: %d G1 points cannot interpolate cosets of size %d",
			ErrInvalidSRS, len(s.G1), maxCosetSize)
	}
	ok := &OpeningKey{
		G1:       s.G1[:maxCosetSize],
		G1Gen:    s.G1[0],
		G2Gen:    s.G2[0],
		G2Tau:    s.G2[1],
		G2TauPow: s.G2[maxCosetSize],
		cosetLen: maxCosetSize,
	}
	ok.linesGen = bls12381.PrecomputeLines(ok.G2Gen)
	ok.linesTau = bls12381.PrecomputeLines(ok.G2Tau)
	ok.linesTauPow = bls12381.PrecomputeLines(ok.G2TauPow)
	return ok, nil
}
