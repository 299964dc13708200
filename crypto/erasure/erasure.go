// Package erasure implements the Reed-Solomon code used to extend blobs: a
// polynomial of polyLen coefficients is evaluated over a domain of
// numBlocks·blockSize points, and the evaluations, in bit-reversed order, are
// split in numBlocks contiguous blocks. Any set of blocks holding at least
// polyLen evaluations is enough to decode the polynomial.
//
// Block i holds the evaluations over the coset h_i·H, where H is the
// subgroup of size blockSize and h_i = ω^rev(i), so erasing a block erases a
// whole coset. The decoder uses that structure: the vanishing polynomial of
// the missing points is a polynomial in X^blockSize.
package erasure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/domain"
	"github.com/vocdoni/davinci-das/crypto/poly"
)

var (
	// ErrInvalidParameters is returned for inconsistent code sizes.
	ErrInvalidParameters = errors.New("invalid erasure code parameters")
	// ErrTooFewBlocks is returned when the known blocks hold fewer
	// evaluations than the polynomial has coefficients.
	ErrTooFewBlocks = errors.New("not enough blocks to decode")
	// ErrInvalidBlock is returned for out of range, duplicated or wrongly
	// sized blocks.
	ErrInvalidBlock = errors.New("invalid block")
	// ErrDegreeTooHigh is returned when the decoded polynomial does not fit
	// in polyLen coefficients, which means the blocks are not evaluations
	// of a single codeword.
	ErrDegreeTooHigh = errors.New("decoded polynomial exceeds the degree bound")
)

// Code is an erasure code over a fixed extended domain. It is safe for
// concurrent use.
type Code struct {
	polyLen   int
	blockSize int
	numBlocks int

	ext *domain.Domain
	// blockRoots[i] = h_i^blockSize, the root of X^blockSize - h_i^blockSize
	blockRoots []fr.Element

	buffers sync.Pool
}

// New returns the code extending polyLen coefficients to numBlocks blocks of
// blockSize evaluations.
func New(polyLen, blockSize, numBlocks int) (*Code, error) {
	extLen := blockSize * numBlocks
	switch {
	case polyLen <= 0 || blockSize <= 0 || numBlocks <= 0:
		return nil, fmt.Errorf("%w: non positive size", ErrInvalidParameters)
	case extLen&(extLen-1) != 0 || numBlocks&(numBlocks-1) != 0:
		return nil, fmt.Errorf("%w: sizes must be powers of two", ErrInvalidParameters)
	case polyLen%blockSize != 0 || polyLen >= extLen:
		return nil, fmt.Errorf("%w: %d coefficients over %d blocks of %d", ErrInvalidParameters, polyLen, numBlocks, blockSize)
	}
	c := &Code{
		polyLen:    polyLen,
		blockSize:  blockSize,
		numBlocks:  numBlocks,
		ext:        domain.New(uint64(extLen)),
		blockRoots: make([]fr.Element, numBlocks),
	}
	rootsOfBlocks := domain.New(uint64(numBlocks))
	for i := range c.blockRoots {
		c.blockRoots[i] = rootsOfBlocks.CosetShift(uint64(i), uint64(numBlocks))
	}
	c.buffers.New = func() any {
		buf := make([]fr.Element, extLen)
		return &buf
	}
	return c, nil
}

// PolyLen returns the number of coefficients of encoded polynomials.
func (c *Code) PolyLen() int { return c.polyLen }

// BlockSize returns the number of evaluations per block.
func (c *Code) BlockSize() int { return c.blockSize }

// NumBlocks returns the number of blocks of a codeword.
func (c *Code) NumBlocks() int { return c.numBlocks }

// Domain returns the extended evaluation domain.
func (c *Code) Domain() *domain.Domain { return c.ext }

// MinBlocks returns the minimum number of distinct blocks needed to decode.
func (c *Code) MinBlocks() int { return c.polyLen / c.blockSize }

// Encode returns the bit-reversed evaluations of the polynomial with the
// given coefficients over the extended domain.
func (c *Code) Encode(coeffs []fr.Element) ([]fr.Element, error) {
	if len(coeffs) > c.polyLen {
		return nil, fmt.Errorf("%w: %d coefficients, code holds %d", ErrDegreeTooHigh, len(coeffs), c.polyLen)
	}
	evals := make([]fr.Element, c.ext.Cardinality)
	copy(evals, coeffs)
	c.ext.FFTBitReversed(evals)
	return evals, nil
}

// Decode returns the coefficients of the polynomial whose codeword contains
// the given blocks. indices[j] is the position of blocks[j] in the codeword;
// indices must be distinct.
func (c *Code) Decode(indices []uint64, blocks [][]fr.Element) ([]fr.Element, error) {
	if len(indices) != len(blocks) {
		return nil, fmt.Errorf("%w: %d indices and %d blocks", ErrInvalidBlock, len(indices), len(blocks))
	}
	evalsPtr := c.buffers.Get().(*[]fr.Element)
	defer c.buffers.Put(evalsPtr)
	evals := *evalsPtr
	clear(evals)

	present := make([]bool, c.numBlocks)
	for j, idx := range indices {
		switch {
		case idx >= uint64(c.numBlocks):
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidBlock, idx)
		case present[idx]:
			return nil, fmt.Errorf("%w: duplicated index %d", ErrInvalidBlock, idx)
		case len(blocks[j]) != c.blockSize:
			return nil, fmt.Errorf("%w: block %d has %d evaluations", ErrInvalidBlock, idx, len(blocks[j]))
		}
		present[idx] = true
		copy(evals[int(idx)*c.blockSize:], blocks[j])
	}
	if len(indices) < c.MinBlocks() {
		return nil, fmt.Errorf("%w: %d of %d", ErrTooFewBlocks, len(indices), c.MinBlocks())
	}

	if len(indices) == c.numBlocks {
		c.ext.IFFTBitReversed(evals)
	} else {
		c.decodeErasures(evals, present)
	}

	for i := c.polyLen; i < len(evals); i++ {
		if !evals[i].IsZero() {
			return nil, ErrDegreeTooHigh
		}
	}
	coeffs := make([]fr.Element, c.polyLen)
	copy(coeffs, evals)
	return coeffs, nil
}

// decodeErasures replaces the bit-reversed evaluations in evals, where the
// missing blocks are zero, by the coefficients of the interpolated
// polynomial. With Z the vanishing polynomial of the missing points and f
// the codeword polynomial, E·Z = f·Z holds on the whole domain, so f is
// (E·Z)/Z, divided over a coset where Z has no roots.
func (c *Code) decodeErasures(evals []fr.Element, present []bool) {
	missing := make([]fr.Element, 0, c.numBlocks)
	for i, ok := range present {
		if !ok {
			missing = append(missing, c.blockRoots[i])
		}
	}
	zPtr := c.buffers.Get().(*[]fr.Element)
	defer c.buffers.Put(zPtr)
	z := *zPtr
	clear(z)
	// Z(X) = Π (X^blockSize - h_i^blockSize), a polynomial in X^blockSize
	for i, coeff := range poly.Vanishing(missing) {
		z[i*c.blockSize] = coeff
	}
	zCoeffs := make([]fr.Element, len(z))
	copy(zCoeffs, z)

	c.ext.FFTBitReversed(z)
	for i := range evals {
		evals[i].Mul(&evals[i], &z[i])
	}
	c.ext.IFFTBitReversed(evals)

	c.ext.CosetFFTBitReversed(evals)
	c.ext.CosetFFTBitReversed(zCoeffs)
	zInv := fr.BatchInvert(zCoeffs)
	for i := range evals {
		evals[i].Mul(&evals[i], &zInv[i])
	}
	c.ext.CosetIFFTBitReversed(evals)
}
