// Package domain implements the transform engine: forward and inverse
// transforms between coefficient and evaluation form over multiplicative
// subgroups of roots of unity, their coset variants, and the same transforms
// over G1 points.
//
// Evaluation vectors used by the engine are kept in bit-reversed order, which
// is the layout of blobs and cells. The methods suffixed with BitReversed
// produce or consume that layout directly.
package domain

import (
	"fmt"
	"math/big"
	"math/bits"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

// Domain is a multiplicative subgroup of size Cardinality generated by a
// primitive root of unity. It is immutable and safe for concurrent use.
type Domain struct {
	Cardinality    uint64
	CardinalityInv fr.Element
	Generator      fr.Element
	GeneratorInv   fr.Element
	// Roots holds the subgroup elements in natural order, Roots[i] = ω^i.
	Roots []fr.Element

	fft *fft.Domain

	// big.Int twiddles for the G1 transforms, built on first use.
	g1Once     sync.Once
	g1Twiddles []big.Int
	g1TwInv    []big.Int
}

// New returns the domain of the given size, which must be a power of two.
func New(size uint64) *Domain {
	if size == 0 || size&(size-1) != 0 {
		panic(fmt.Sprintf("domain size %d is not a power of two", size))
	}
	fd := fft.NewDomain(size)
	d := &Domain{
		Cardinality:    fd.Cardinality,
		CardinalityInv: fd.CardinalityInv,
		Generator:      fd.Generator,
		GeneratorInv:   fd.GeneratorInv,
		Roots:          make([]fr.Element, size),
		fft:            fd,
	}
	fft.BuildExpTable(d.Generator, d.Roots)
	return d
}

// CosetGenerator returns the shift used by the coset transforms (the
// multiplicative generator of the field, 7).
func (d *Domain) CosetGenerator() fr.Element {
	return d.fft.FrMultiplicativeGen
}

// FFT evaluates, in place, the polynomial with the given natural-order
// coefficients over the domain. The output is in natural order.
func (d *Domain) FFT(values []fr.Element) {
	d.checkLen(len(values))
	d.fft.FFT(values, fft.DIF)
	fft.BitReverse(values)
}

// IFFT interpolates, in place, natural-order evaluations into natural-order
// coefficients.
func (d *Domain) IFFT(values []fr.Element) {
	d.checkLen(len(values))
	fft.BitReverse(values)
	d.fft.FFTInverse(values, fft.DIT)
}

// FFTBitReversed evaluates natural-order coefficients and leaves the
// evaluations in bit-reversed order.
func (d *Domain) FFTBitReversed(values []fr.Element) {
	d.checkLen(len(values))
	d.fft.FFT(values, fft.DIF)
}

// IFFTBitReversed interpolates bit-reversed evaluations into natural-order
// coefficients.
func (d *Domain) IFFTBitReversed(values []fr.Element) {
	d.checkLen(len(values))
	d.fft.FFTInverse(values, fft.DIT)
}

// CosetFFTBitReversed evaluates natural-order coefficients over the coset
// g·H, where g is CosetGenerator, leaving the output bit-reversed.
func (d *Domain) CosetFFTBitReversed(values []fr.Element) {
	d.checkLen(len(values))
	d.fft.FFT(values, fft.DIF, fft.OnCoset())
}

// CosetIFFTBitReversed is the inverse of CosetFFTBitReversed.
func (d *Domain) CosetIFFTBitReversed(values []fr.Element) {
	d.checkLen(len(values))
	d.fft.FFTInverse(values, fft.DIT, fft.OnCoset())
}

// InterpolateOnCoset turns the bit-reversed evaluations of a polynomial over
// the coset h·H into its natural-order coefficients. shiftInv is h⁻¹.
func (d *Domain) InterpolateOnCoset(values []fr.Element, shiftInv fr.Element) {
	d.IFFTBitReversed(values)
	var acc fr.Element
	acc.SetOne()
	for i := range values {
		values[i].Mul(&values[i], &acc)
		acc.Mul(&acc, &shiftInv)
	}
}

func (d *Domain) checkLen(n int) {
	if uint64(n) != d.Cardinality {
		panic(fmt.Sprintf("transform of %d values over a domain of size %d", n, d.Cardinality))
	}
}

// ReverseBits returns the bit-reversal of index i for a domain of size n,
// which must be a power of two.
func ReverseBits(i, n uint64) uint64 {
	if n <= 1 {
		return 0
	}
	return bits.Reverse64(i) >> (64 - bits.TrailingZeros64(n))
}

// BitReverse permutes v in place into bit-reversed order. len(v) must be a
// power of two.
func BitReverse[T any](v []T) {
	n := uint64(len(v))
	if n&(n-1) != 0 {
		panic(fmt.Sprintf("bit reversal of %d elements", n))
	}
	for i := range n {
		j := ReverseBits(i, n)
		if i < j {
			v[i], v[j] = v[j], v[i]
		}
	}
}

// CosetShift returns the generator h of the i-th of numCosets cosets of the
// subgroup of size Cardinality/numCosets, with cosets enumerated in
// bit-reversed order: h = ω^rev(i).
func (d *Domain) CosetShift(i, numCosets uint64) fr.Element {
	return d.Roots[ReverseBits(i, numCosets)]
}
