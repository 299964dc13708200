package kzg

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/poly"
)

const (
	testSecret    = 1337
	testPolyLen   = 32
	testCosetSize = 4
)

func testSRS(c *qt.C) *SRS {
	srs, err := InsecureSRS(big.NewInt(testSecret), testPolyLen, testCosetSize+1)
	c.Assert(err, qt.IsNil)
	return srs
}

func randomPoly(n int) poly.Polynomial {
	p := make(poly.Polynomial, n)
	for i := range p {
		p[i].MustSetRandom()
	}
	return p
}

func TestInsecureSRS(t *testing.T) {
	c := qt.New(t)
	srs := testSRS(c)
	c.Assert(srs.G1, qt.HasLen, testPolyLen)
	c.Assert(srs.G2, qt.HasLen, testCosetSize+1)

	g1 := bls.G1Generator()
	var expected bls12381.G1Affine
	expected.ScalarMultiplication(&g1, big.NewInt(testSecret*testSecret))
	c.Assert(srs.G1[2].Equal(&expected), qt.IsTrue)

	_, err := InsecureSRS(big.NewInt(0), 4, 2)
	c.Assert(err, qt.ErrorIs, ErrInvalidSRS)
	_, err = NewSRS(srs.G1[1:], srs.G2)
	c.Assert(err, qt.ErrorIs, ErrInvalidSRS)
	_, err = NewSRS(srs.G1, srs.G2[:1])
	c.Assert(err, qt.ErrorIs, ErrInvalidSRS)
	_, err = srs.OpeningKey(testCosetSize + 1)
	c.Assert(err, qt.ErrorIs, ErrInvalidSRS)
}

func TestCommit(t *testing.T) {
	c := qt.New(t)
	srs := testSRS(c)
	ck := srs.CommitKey()
	p := randomPoly(testPolyLen)

	commitment, err := ck.Commit(p)
	c.Assert(err, qt.IsNil)

	// with a known secret the commitment is [p(τ)]₁
	tau := fr.NewElement(testSecret)
	y := p.Evaluate(&tau)
	g1 := bls.G1Generator()
	var expected bls12381.G1Affine
	expected.ScalarMultiplication(&g1, bls.ScalarToBig(&y))
	c.Assert(commitment.Equal(&expected), qt.IsTrue)

	_, err = ck.Commit(randomPoly(testPolyLen + 1))
	c.Assert(err, qt.ErrorIs, ErrPolynomialTooLarge)
}

func TestOpenVerify(t *testing.T) {
	c := qt.New(t)
	srs := testSRS(c)
	ck := srs.CommitKey()
	ok, err := srs.OpeningKey(testCosetSize)
	c.Assert(err, qt.IsNil)

	p := randomPoly(testPolyLen)
	commitment, err := ck.Commit(p)
	c.Assert(err, qt.IsNil)

	var z fr.Element
	z.MustSetRandom()
	y, proof, err := Open(ck, p, &z)
	c.Assert(err, qt.IsNil)

	valid, err := ok.Verify(&commitment, &z, &y, &proof)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	c.Run("wrong value", func(c *qt.C) {
		var wrong fr.Element
		one := fr.One()
		wrong.Add(&y, &one)
		valid, err := ok.Verify(&commitment, &z, &wrong, &proof)
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsFalse)
	})

	c.Run("wrong point", func(c *qt.C) {
		var other fr.Element
		other.MustSetRandom()
		valid, err := ok.Verify(&commitment, &other, &y, &proof)
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsFalse)
	})

	c.Run("constant polynomial", func(c *qt.C) {
		constant := poly.Polynomial{fr.NewElement(42)}
		cc, err := ck.Commit(constant)
		c.Assert(err, qt.IsNil)
		y, proof, err := Open(ck, constant, &z)
		c.Assert(err, qt.IsNil)
		c.Assert(proof.IsInfinity(), qt.IsTrue)
		valid, err := ok.Verify(&cc, &z, &y, &proof)
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsTrue)
	})
}

func TestOpenVerifyCoset(t *testing.T) {
	c := qt.New(t)
	srs := testSRS(c)
	ck := srs.CommitKey()
	ok, err := srs.OpeningKey(testCosetSize)
	c.Assert(err, qt.IsNil)
	c.Assert(ok.CosetSize(), qt.Equals, testCosetSize)

	p := randomPoly(testPolyLen)
	commitment, err := ck.Commit(p)
	c.Assert(err, qt.IsNil)

	shift := fr.NewElement(5)
	proof, err := OpenCoset(ck, p, &shift, testCosetSize)
	c.Assert(err, qt.IsNil)

	var hPow fr.Element
	hPow.Exp(shift, big.NewInt(testCosetSize))
	_, interpolation := poly.DivideByBinomial(p, testCosetSize, &hPow)
	c.Assert(interpolation, qt.HasLen, testCosetSize)

	valid, err := ok.VerifyCoset(&commitment, &shift, interpolation, &proof)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	// the interpolation matches p on the coset points
	var w fr.Element
	w.Exp(fr.NewElement(7), new(big.Int).Div(new(big.Int).Sub(fr.Modulus(), big.NewInt(1)), big.NewInt(testCosetSize)))
	x := shift
	for range testCosetSize {
		a, b := p.Evaluate(&x), interpolation.Evaluate(&x)
		c.Assert(a.Equal(&b), qt.IsTrue)
		x.Mul(&x, &w)
	}

	tampered := append(poly.Polynomial(nil), interpolation...)
	one := fr.One()
	tampered[0].Add(&tampered[0], &one)
	valid, err = ok.VerifyCoset(&commitment, &shift, tampered, &proof)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsFalse)

	otherShift := fr.NewElement(6)
	valid, err = ok.VerifyCoset(&commitment, &otherShift, interpolation, &proof)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsFalse)
}
