package bls

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	qt "github.com/frankban/quicktest"
)

func TestScalarCodec(t *testing.T) {
	c := qt.New(t)

	c.Run("round trip", func(c *qt.C) {
		var s fr.Element
		s.MustSetRandom()
		enc := EncodeScalar(&s)
		dec, err := DecodeScalar(enc[:])
		c.Assert(err, qt.IsNil)
		c.Assert(dec.Equal(&s), qt.IsTrue)
	})

	c.Run("modulus is not canonical", func(c *qt.C) {
		b := fr.Modulus().FillBytes(make([]byte, BytesPerScalar))
		_, err := DecodeScalar(b)
		c.Assert(err, qt.ErrorIs, ErrInvalidScalar)
	})

	c.Run("modulus minus one is canonical", func(c *qt.C) {
		m := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
		s, err := DecodeScalar(m.FillBytes(make([]byte, BytesPerScalar)))
		c.Assert(err, qt.IsNil)
		c.Assert(ScalarToBig(&s).Cmp(m), qt.Equals, 0)
	})

	c.Run("wrong length", func(c *qt.C) {
		_, err := DecodeScalar(make([]byte, 31))
		c.Assert(err, qt.ErrorIs, ErrInvalidLength)
	})

	c.Run("contiguous buffer", func(c *qt.C) {
		src := make([]fr.Element, 8)
		for i := range src {
			src[i].MustSetRandom()
		}
		buf := make([]byte, len(src)*BytesPerScalar)
		EncodeScalars(buf, src)
		dst := make([]fr.Element, len(src))
		c.Assert(DecodeScalars(dst, buf), qt.IsNil)
		c.Assert(dst, qt.DeepEquals, src)

		copy(buf[3*BytesPerScalar:], fr.Modulus().FillBytes(make([]byte, BytesPerScalar)))
		err := DecodeScalars(dst, buf)
		c.Assert(err, qt.ErrorIs, ErrInvalidScalar)
		c.Assert(err, qt.ErrorMatches, ".*element 3.*")
		c.Assert(DecodeScalars(dst, buf[1:]), qt.ErrorIs, ErrInvalidLength)
	})
}

func TestPointCodec(t *testing.T) {
	c := qt.New(t)
	g1, g2 := G1Generator(), G2Generator()

	c.Run("g1 round trip", func(c *qt.C) {
		var p bls12381.G1Affine
		p.ScalarMultiplication(&g1, big.NewInt(12345))
		enc := EncodeG1(&p)
		dec, err := DecodeG1(enc[:])
		c.Assert(err, qt.IsNil)
		c.Assert(dec.Equal(&p), qt.IsTrue)
	})

	c.Run("g1 infinity", func(c *qt.C) {
		var inf bls12381.G1Affine
		enc := EncodeG1(&inf)
		c.Assert(enc[0], qt.Equals, byte(0xc0))
		dec, err := DecodeG1(enc[:])
		c.Assert(err, qt.IsNil)
		c.Assert(dec.IsInfinity(), qt.IsTrue)
	})

	c.Run("g1 invalid", func(c *qt.C) {
		_, err := DecodeG1(make([]byte, BytesPerG1-1))
		c.Assert(err, qt.ErrorIs, ErrInvalidLength)
		// compression flag unset
		_, err = DecodeG1(make([]byte, BytesPerG1))
		c.Assert(err, qt.ErrorIs, ErrInvalidPoint)
		// (0, 2) is on the curve but has order 3
		b := make([]byte, BytesPerG1)
		b[0] = 0x80
		_, err = DecodeG1(b)
		c.Assert(err, qt.ErrorIs, ErrInvalidPoint)
	})

	c.Run("g2 round trip", func(c *qt.C) {
		var p bls12381.G2Affine
		p.ScalarMultiplication(&g2, big.NewInt(777))
		enc := EncodeG2(&p)
		dec, err := DecodeG2(enc[:])
		c.Assert(err, qt.IsNil)
		c.Assert(dec.Equal(&p), qt.IsTrue)
		_, err = DecodeG2(enc[:BytesPerG1])
		c.Assert(err, qt.ErrorIs, ErrInvalidLength)
	})
}

func TestLinearCombination(t *testing.T) {
	c := qt.New(t)
	g1 := G1Generator()

	points := make([]bls12381.G1Affine, 4)
	scalars := make([]fr.Element, 4)
	var expected fr.Element
	for i := range points {
		var k fr.Element
		k.SetUint64(uint64(i + 2))
		points[i].ScalarMultiplication(&g1, ScalarToBig(&k))
		scalars[i].SetUint64(uint64(10 * (i + 1)))
		k.Mul(&k, &scalars[i])
		expected.Add(&expected, &k)
	}
	var want bls12381.G1Affine
	want.ScalarMultiplication(&g1, ScalarToBig(&expected))

	res, err := LinearCombinationG1(points, scalars)
	c.Assert(err, qt.IsNil)
	c.Assert(res.Equal(&want), qt.IsTrue)

	jac, err := LinearCombinationG1Jac(points, scalars)
	c.Assert(err, qt.IsNil)
	var aff bls12381.G1Affine
	aff.FromJacobian(&jac)
	c.Assert(aff.Equal(&want), qt.IsTrue)

	empty, err := LinearCombinationG1(nil, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(empty.IsInfinity(), qt.IsTrue)
	inf := InfinityG1Jac()
	aff.FromJacobian(&inf)
	c.Assert(aff.IsInfinity(), qt.IsTrue)

	_, err = LinearCombinationG1(points, scalars[:3])
	c.Assert(err, qt.IsNotNil)
}

func TestPairingsEqual(t *testing.T) {
	c := qt.New(t)
	g1, g2 := G1Generator(), G2Generator()

	var a bls12381.G1Affine
	var b bls12381.G2Affine
	a.ScalarMultiplication(&g1, big.NewInt(6))
	b.ScalarMultiplication(&g2, big.NewInt(7))
	var ab bls12381.G1Affine
	ab.ScalarMultiplication(&g1, big.NewInt(42))

	ok, err := PairingsEqual(&a, &b, &ab, &g2)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	ok, err = PairingsEqual(&a, &b, &a, &g2)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}
