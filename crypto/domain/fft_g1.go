package domain

import (
	"math/big"
	"runtime"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"
)

// minParallelButterflies is the number of butterflies in a stage below which
// the G1 transform runs on a single goroutine.
const minParallelButterflies = 16

func (d *Domain) initG1Twiddles() {
	d.g1Once.Do(func() {
		half := d.Cardinality / 2
		d.g1Twiddles = make([]big.Int, half)
		d.g1TwInv = make([]big.Int, half)
		var w, wInv fr.Element
		w.SetOne()
		wInv.SetOne()
		for i := range half {
			w.BigInt(&d.g1Twiddles[i])
			wInv.BigInt(&d.g1TwInv[i])
			w.Mul(&w, &d.Generator)
			wInv.Mul(&wInv, &d.GeneratorInv)
		}
	})
}

// FFTG1 computes, in place, out[j] = Σ_i points[i]·ω^(ij). Input and output
// are in natural order.
func (d *Domain) FFTG1(points []bls12381.G1Jac) {
	d.checkLen(len(points))
	d.initG1Twiddles()
	d.fftG1(points, d.g1Twiddles)
}

// IFFTG1 is the inverse of FFTG1.
func (d *Domain) IFFTG1(points []bls12381.G1Jac) {
	d.checkLen(len(points))
	d.initG1Twiddles()
	d.fftG1(points, d.g1TwInv)

	var nInv big.Int
	d.CardinalityInv.BigInt(&nInv)
	parallelRange(len(points), func(start, end int) {
		for i := start; i < end; i++ {
			points[i].ScalarMultiplication(&points[i], &nInv)
		}
	})
}

// fftG1 is an iterative radix-2 decimation-in-time transform.
func (d *Domain) fftG1(a []bls12381.G1Jac, twiddles []big.Int) {
	n := len(a)
	BitReverse(a)
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		stride := n / size
		butterflies := n / 2
		stage := func(start, end int) {
			var t, u bls12381.G1Jac
			for b := start; b < end; b++ {
				block := (b / half) * size
				j := b % half
				lo, hi := block+j, block+j+half
				if j == 0 {
					t.Set(&a[hi])
				} else {
					t.ScalarMultiplication(&a[hi], &twiddles[j*stride])
				}
				u.Set(&a[lo])
				a[lo].Set(&u).AddAssign(&t)
				a[hi].Set(&u).SubAssign(&t)
			}
		}
		if butterflies < minParallelButterflies {
			stage(0, butterflies)
			continue
		}
		parallelRange(butterflies, stage)
	}
}

// parallelRange splits [0, n) in chunks processed concurrently.
func parallelRange(n int, fn func(start, end int)) {
	workers := min(runtime.NumCPU(), n)
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
