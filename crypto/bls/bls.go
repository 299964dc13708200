// Package bls wraps the BLS12-381 primitives used by the data availability
// engine: canonical scalar codecs, compressed point codecs with subgroup
// checks, multi-scalar multiplications and pairing equations.
package bls

import (
	"errors"
	"fmt"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	// BytesPerScalar is the size of a serialized scalar field element.
	BytesPerScalar = fr.Bytes
	// BytesPerG1 is the size of a compressed G1 point.
	BytesPerG1 = bls12381.SizeOfG1AffineCompressed
	// BytesPerG2 is the size of a compressed G2 point.
	BytesPerG2 = bls12381.SizeOfG2AffineCompressed
)

var (
	// ErrInvalidLength is returned when a buffer does not have the exact
	// expected size.
	ErrInvalidLength = errors.New("invalid encoding length")
	// ErrInvalidScalar is returned when a scalar is not in canonical form,
	// i.e. its value is not strictly lower than the field modulus.
	ErrInvalidScalar = errors.New("non-canonical scalar")
	// ErrInvalidPoint is returned when a compressed point is malformed, is
	// not on the curve or is not in the prime order subgroup.
	ErrInvalidPoint = errors.New("invalid curve point")
)

var (
	g1Gen bls12381.G1Affine
	g2Gen bls12381.G2Affine
)

func init() {
	_, _, g1Gen, g2Gen = bls12381.Generators()
}

// G1Generator returns the canonical generator of G1.
func G1Generator() bls12381.G1Affine { return g1Gen }

// G2Generator returns the canonical generator of G2.
func G2Generator() bls12381.G2Affine { return g2Gen }

// DecodeScalar parses a 32-byte big-endian scalar. Values greater or equal
// to the modulus are rejected instead of being reduced.
func DecodeScalar(b []byte) (fr.Element, error) {
	var s fr.Element
	if len(b) != BytesPerScalar {
		return s, fmt.Errorf("%w: scalar has %d bytes, expected %d", ErrInvalidLength, len(b), BytesPerScalar)
	}
	if err := s.SetBytesCanonical(b); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}
	return s, nil
}

// DecodeScalars parses a contiguous buffer of n canonical scalars into dst,
// which must have room for len(b)/BytesPerScalar elements.
func DecodeScalars(dst []fr.Element, b []byte) error {
	if len(b) != len(dst)*BytesPerScalar {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidLength, len(b), len(dst)*BytesPerScalar)
	}
	for i := range dst {
		if err := dst[i].SetBytesCanonical(b[i*BytesPerScalar : (i+1)*BytesPerScalar]); err != nil {
			return fmt.Errorf("%w: element %d: %v", ErrInvalidScalar, i, err)
		}
	}
	return nil
}

// EncodeScalar serializes a scalar as 32 big-endian bytes.
func EncodeScalar(s *fr.Element) [BytesPerScalar]byte {
	return s.Bytes()
}

// EncodeScalars serializes the scalars into dst, which must be exactly
// len(src)*BytesPerScalar bytes long.
func EncodeScalars(dst []byte, src []fr.Element) {
	for i := range src {
		fr.BigEndian.PutElement((*[BytesPerScalar]byte)(dst[i*BytesPerScalar:(i+1)*BytesPerScalar]), src[i])
	}
}

// DecodeG1 parses a compressed G1 point, checking it is on the curve and in
// the prime order subgroup. The point at infinity is accepted.
func DecodeG1(b []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	if len(b) != BytesPerG1 {
		return p, fmt.Errorf("%w: G1 point has %d bytes, expected %d", ErrInvalidLength, len(b), BytesPerG1)
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p, nil
}

// EncodeG1 returns the compressed encoding of a G1 point.
func EncodeG1(p *bls12381.G1Affine) [BytesPerG1]byte {
	return p.Bytes()
}

// DecodeG2 parses a compressed G2 point, checking it is on the curve and in
// the prime order subgroup.
func DecodeG2(b []byte) (bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	if len(b) != BytesPerG2 {
		return p, fmt.Errorf("%w: G2 point has %d bytes, expected %d", ErrInvalidLength, len(b), BytesPerG2)
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p, nil
}

// EncodeG2 returns the compressed encoding of a G2 point.
func EncodeG2(p *bls12381.G2Affine) [BytesPerG2]byte {
	return p.Bytes()
}

// ScalarToBig converts a scalar to its regular (non Montgomery) big.Int form.
func ScalarToBig(s *fr.Element) *big.Int {
	return s.BigInt(new(big.Int))
}

// LinearCombinationG1 computes sum(scalars[i] * points[i]). Both slices must
// have the same length; an empty combination is the point at infinity.
func LinearCombinationG1(points []bls12381.G1Affine, scalars []fr.Element) (bls12381.G1Affine, error) {
	var res bls12381.G1Affine
	if len(points) != len(scalars) {
		return res, fmt.Errorf("msm: %d points and %d scalars", len(points), len(scalars))
	}
	if len(points) == 0 {
		return res, nil
	}
	if _, err := res.MultiExp(points, scalars, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return res, fmt.Errorf("msm: %w", err)
	}
	return res, nil
}

// LinearCombinationG1Jac is like LinearCombinationG1 but returns the result in
// Jacobian coordinates and runs single threaded, which suits callers that
// already parallelize over many small combinations.
func LinearCombinationG1Jac(points []bls12381.G1Affine, scalars []fr.Element) (bls12381.G1Jac, error) {
	var res bls12381.G1Jac
	if len(points) != len(scalars) {
		return res, fmt.Errorf("msm: %d points and %d scalars", len(points), len(scalars))
	}
	if len(points) == 0 {
		return InfinityG1Jac(), nil
	}
	if _, err := res.MultiExp(points, scalars, ecc.MultiExpConfig{NbTasks: 1}); err != nil {
		return res, fmt.Errorf("msm: %w", err)
	}
	return res, nil
}

// InfinityG1Jac returns the point at infinity in Jacobian coordinates.
func InfinityG1Jac() bls12381.G1Jac {
	var p bls12381.G1Jac
	p.X.SetOne()
	p.Y.SetOne()
	return p
}

// PairingsEqual reports whether e(a1, b1) == e(a2, b2), using a single
// multi-pairing e(a1, b1) * e(-a2, b2) == 1.
func PairingsEqual(a1 *bls12381.G1Affine, b1 *bls12381.G2Affine, a2 *bls12381.G1Affine, b2 *bls12381.G2Affine) (bool, error) {
	var negA2 bls12381.G1Affine
	negA2.Neg(a2)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{*a1, negA2},
		[]bls12381.G2Affine{*b1, *b2},
	)
	if err != nil {
		return false, fmt.Errorf("pairing check: %w", err)
	}
	return ok, nil
}
