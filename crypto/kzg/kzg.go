package kzg

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/poly"
)

// ErrPolynomialTooLarge is returned when committing to a polynomial with more
// coefficients than the commit key supports.
var ErrPolynomialTooLarge = errors.New("polynomial exceeds the commit key size")

// pairingLines are the precomputed Miller loop lines of a fixed G2 point.
type pairingLines = [2][len(bls12381.LoopCounter) - 1]bls12381.LineEvaluationAff

// CommitKey holds the G1 powers of τ used to commit to polynomials.
type CommitKey struct {
	G1 []bls12381.G1Affine
}

// Commit returns [p(τ)]₁.
func (ck *CommitKey) Commit(p poly.Polynomial) (bls12381.G1Affine, error) {
	if len(p) > len(ck.G1) {
		return bls12381.G1Affine{}, fmt.Errorf("%w: %d coefficients, key holds %d", ErrPolynomialTooLarge, len(p), len(ck.G1))
	}
	return bls.LinearCombinationG1(ck.G1[:len(p)], p)
}

// OpeningKey holds the elements needed to verify openings. The G2 points are
// fixed, so their Miller loop lines are precomputed.
type OpeningKey struct {
	// G1 holds [τ^i]₁ for i < cosetLen, used to commit to interpolation
	// polynomials.
	G1       []bls12381.G1Affine
	G1Gen    bls12381.G1Affine
	G2Gen    bls12381.G2Affine
	G2Tau    bls12381.G2Affine
	G2TauPow bls12381.G2Affine

	cosetLen    int
	linesGen    pairingLines
	linesTau    pairingLines
	linesTauPow pairingLines
}

// CosetSize returns the size of the cosets this key verifies openings for.
func (ok *OpeningKey) CosetSize() int { return ok.cosetLen }

// Open evaluates p at z and returns the value together with the opening
// proof [q(τ)]₁, where q = (p - p(z)) / (X - z).
func Open(ck *CommitKey, p poly.Polynomial, z *fr.Element) (fr.Element, bls12381.G1Affine, error) {
	y := p.Evaluate(z)
	if len(p) < 2 {
		// constant polynomial, the quotient is zero
		return y, bls12381.G1Affine{}, nil
	}
	q, err := poly.DivideByLinear(p, z)
	if err != nil {
		return y, bls12381.G1Affine{}, fmt.Errorf("open: %w", err)
	}
	proof, err := ck.Commit(q)
	if err != nil {
		return y, bls12381.G1Affine{}, fmt.Errorf("open: %w", err)
	}
	return y, proof, nil
}

// Verify checks that proof attests commitment opens to y at z, i.e.
//
//	e(C - [y]₁ + z·π, [1]₂) == e(π, [τ]₂)
//
// A well-formed but wrong proof yields false and no error.
func (ok *OpeningKey) Verify(commitment *bls12381.G1Affine, z, y *fr.Element, proof *bls12381.G1Affine) (bool, error) {
	var yG1, zPi, lhs bls12381.G1Affine
	yG1.ScalarMultiplication(&ok.G1Gen, bls.ScalarToBig(y))
	zPi.ScalarMultiplication(proof, bls.ScalarToBig(z))
	lhs.Sub(commitment, &yG1)
	lhs.Add(&lhs, &zPi)
	return ok.pairingCheck(&lhs, proof, &ok.linesTau)
}

// pairingCheck reports whether e(lhs, [1]₂) == e(rhs, Q), where lines are the
// precomputed lines of Q.
func (ok *OpeningKey) pairingCheck(lhs, rhs *bls12381.G1Affine, lines *pairingLines) (bool, error) {
	var negRhs bls12381.G1Affine
	negRhs.Neg(rhs)
	res, err := bls12381.PairingCheckFixedQ(
		[]bls12381.G1Affine{*lhs, negRhs},
		[]pairingLines{ok.linesGen, *lines},
	)
	if err != nil {
		return false, fmt.Errorf("pairing check: %w", err)
	}
	return res, nil
}
