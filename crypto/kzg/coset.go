package kzg

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/poly"
)

// OpenCoset computes the multi-point opening proof of p over the coset
// h·H, where H is the subgroup of size cosetSize. The proof commits to the
// quotient of p by the coset vanishing polynomial X^cosetSize - h^cosetSize.
//
// It costs one full size commitment per coset; batched provers should be
// preferred when opening every coset of a domain.
func OpenCoset(ck *CommitKey, p poly.Polynomial, shift *fr.Element, cosetSize int) (bls12381.G1Affine, error) {
	var hPow fr.Element
	hPow.Exp(*shift, big.NewInt(int64(cosetSize)))
	q, _ := poly.DivideByBinomial(p, cosetSize, &hPow)
	proof, err := ck.Commit(q)
	if err != nil {
		return bls12381.G1Affine{}, fmt.Errorf("open coset: %w", err)
	}
	return proof, nil
}

// CommitInterpolation commits to an interpolation polynomial of at most
// CosetSize coefficients.
func (ok *OpeningKey) CommitInterpolation(p poly.Polynomial) (bls12381.G1Affine, error) {
	if len(p) > len(ok.G1) {
		return bls12381.G1Affine{}, fmt.Errorf("%w: %d coefficients, key holds %d", ErrPolynomialTooLarge, len(p), len(ok.G1))
	}
	return bls.LinearCombinationG1(ok.G1[:len(p)], p)
}

// VerifyCoset checks a multi-point opening over the coset h·H, where
// interpolation is the polynomial I of degree < |H| matching the claimed
// evaluations:
//
//	e(C - [I(τ)]₁ + h^|H|·π, [1]₂) == e(π, [τ^|H|]₂)
func (ok *OpeningKey) VerifyCoset(commitment *bls12381.G1Affine, shift *fr.Element, interpolation poly.Polynomial, proof *bls12381.G1Affine) (bool, error) {
	iComm, err := ok.CommitInterpolation(interpolation)
	if err != nil {
		return false, err
	}
	var hPow fr.Element
	hPow.Exp(*shift, big.NewInt(int64(ok.cosetLen)))

	var hPi, lhs bls12381.G1Affine
	hPi.ScalarMultiplication(proof, bls.ScalarToBig(&hPow))
	lhs.Sub(commitment, &iComm)
	lhs.Add(&lhs, &hPi)
	return ok.VerifyAggregated(&lhs, proof)
}

// VerifyAggregated checks e(lhs, [1]₂) == e(rhs, [τ^|H|]₂), the equation a
// random linear combination of coset openings reduces to.
func (ok *OpeningKey) VerifyAggregated(lhs, rhs *bls12381.G1Affine) (bool, error) {
	return ok.pairingCheck(lhs, rhs, &ok.linesTauPow)
}
