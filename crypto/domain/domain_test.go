package domain

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	qt "github.com/frankban/quicktest"
)

func randomScalars(n int) []fr.Element {
	v := make([]fr.Element, n)
	for i := range v {
		v[i].MustSetRandom()
	}
	return v
}

// evaluate computes Σ c_i x^i with Horner's rule.
func evaluate(coeffs []fr.Element, x fr.Element) fr.Element {
	var res fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		res.Mul(&res, &x).Add(&res, &coeffs[i])
	}
	return res
}

func TestReverseBits(t *testing.T) {
	c := qt.New(t)
	c.Assert(ReverseBits(1, 8), qt.Equals, uint64(4))
	c.Assert(ReverseBits(3, 8), qt.Equals, uint64(6))
	c.Assert(ReverseBits(0, 128), qt.Equals, uint64(0))
	c.Assert(ReverseBits(1, 128), qt.Equals, uint64(64))
	c.Assert(ReverseBits(5, 1), qt.Equals, uint64(0))

	v := []int{0, 1, 2, 3, 4, 5, 6, 7}
	BitReverse(v)
	c.Assert(v, qt.DeepEquals, []int{0, 4, 2, 6, 1, 5, 3, 7})
	BitReverse(v)
	c.Assert(v, qt.DeepEquals, []int{0, 1, 2, 3, 4, 5, 6, 7})
}

func TestRootsOfUnity(t *testing.T) {
	c := qt.New(t)
	d := New(128)
	c.Assert(d.Roots[0].IsOne(), qt.IsTrue)

	// ω^128 == 1 and ω^64 == -1
	var w fr.Element
	w.Exp(d.Generator, big.NewInt(128))
	c.Assert(w.IsOne(), qt.IsTrue)
	var minusOne fr.Element
	minusOne.SetOne().Neg(&minusOne)
	c.Assert(d.Roots[64].Equal(&minusOne), qt.IsTrue)

	// the generator is 7^((r-1)/128)
	exp := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	exp.Div(exp, big.NewInt(128))
	var expected fr.Element
	expected.SetUint64(7).Exp(expected, exp)
	c.Assert(d.Generator.Equal(&expected), qt.IsTrue)
}

func TestFFTMatchesEvaluation(t *testing.T) {
	c := qt.New(t)
	d := New(64)
	coeffs := randomScalars(64)

	evals := append([]fr.Element(nil), coeffs...)
	d.FFT(evals)
	for i := range evals {
		expected := evaluate(coeffs, d.Roots[i])
		c.Assert(evals[i].Equal(&expected), qt.IsTrue, qt.Commentf("index %d", i))
	}

	d.IFFT(evals)
	c.Assert(evals, qt.DeepEquals, coeffs)
}

func TestFFTBitReversed(t *testing.T) {
	c := qt.New(t)
	d := New(256)
	coeffs := randomScalars(256)

	natural := append([]fr.Element(nil), coeffs...)
	d.FFT(natural)
	reversed := append([]fr.Element(nil), coeffs...)
	d.FFTBitReversed(reversed)
	BitReverse(natural)
	c.Assert(reversed, qt.DeepEquals, natural)

	d.IFFTBitReversed(reversed)
	c.Assert(reversed, qt.DeepEquals, coeffs)
}

func TestCosetFFT(t *testing.T) {
	c := qt.New(t)
	d := New(32)
	coeffs := randomScalars(32)

	evals := append([]fr.Element(nil), coeffs...)
	d.CosetFFTBitReversed(evals)
	shift := d.CosetGenerator()
	for i := range evals {
		var x fr.Element
		x.Mul(&shift, &d.Roots[ReverseBits(uint64(i), 32)])
		expected := evaluate(coeffs, x)
		c.Assert(evals[i].Equal(&expected), qt.IsTrue, qt.Commentf("index %d", i))
	}

	d.CosetIFFTBitReversed(evals)
	c.Assert(evals, qt.DeepEquals, coeffs)
}

func TestInterpolateOnCoset(t *testing.T) {
	c := qt.New(t)
	d := New(16)
	coeffs := randomScalars(16)
	var h, hInv fr.Element
	h.SetUint64(12345)
	hInv.Inverse(&h)

	evals := make([]fr.Element, 16)
	for i := range evals {
		var x fr.Element
		x.Mul(&h, &d.Roots[ReverseBits(uint64(i), 16)])
		evals[i] = evaluate(coeffs, x)
	}
	d.InterpolateOnCoset(evals, hInv)
	c.Assert(evals, qt.DeepEquals, coeffs)
}

func TestFFTG1(t *testing.T) {
	c := qt.New(t)
	d := New(32)
	scalars := randomScalars(32)

	_, _, g1, _ := bls12381.Generators()
	points := make([]bls12381.G1Jac, len(scalars))
	for i := range scalars {
		var p bls12381.G1Affine
		p.ScalarMultiplication(&g1, scalars[i].BigInt(new(big.Int)))
		points[i].FromAffine(&p)
	}

	d.FFTG1(points)
	evals := append([]fr.Element(nil), scalars...)
	d.FFT(evals)
	for i := range points {
		var got, expected bls12381.G1Affine
		got.FromJacobian(&points[i])
		expected.ScalarMultiplication(&g1, evals[i].BigInt(new(big.Int)))
		c.Assert(got.Equal(&expected), qt.IsTrue, qt.Commentf("index %d", i))
	}

	d.IFFTG1(points)
	for i := range points {
		var got, expected bls12381.G1Affine
		got.FromJacobian(&points[i])
		expected.ScalarMultiplication(&g1, scalars[i].BigInt(new(big.Int)))
		c.Assert(got.Equal(&expected), qt.IsTrue, qt.Commentf("index %d", i))
	}
}
