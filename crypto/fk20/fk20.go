// Package fk20 computes KZG multi-point opening proofs for every coset of an
// extended evaluation domain at once, following Feist and Khovratovich,
// "Fast amortized KZG proofs".
//
// For a polynomial f of n coefficients split in k = n/l blocks of size l, the
// proof for the coset {x : x^l = a} commits to
//
//	q_a = Σ_{s=1}^{k-1} a^(s-1) · h_s,  h_s = ⌊f / X^(s·l)⌋
//
// so all proofs are a single G1 FFT of the vector of [h_s(τ)]₁. The [h_s(τ)]₁
// are obtained with l Toeplitz matrix-vector products, embedded in circulant
// matrices and evaluated with FFTs against precomputed SRS transforms.
package fk20

import (
	"errors"
	"fmt"
	"runtime"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/domain"
	"github.com/vocdoni/davinci-das/crypto/kzg"
	"github.com/vocdoni/davinci-das/crypto/poly"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidParameters is returned when the prover sizes are inconsistent.
var ErrInvalidParameters = errors.New("invalid fk20 parameters")

// Prover holds the precomputed SRS transforms for a fixed polynomial size,
// coset size and number of opened points. It is immutable after creation.
type Prover struct {
	ck        *kzg.CommitKey
	polyLen   int // n
	cosetSize int // l
	blocks    int // k = n / l
	numProofs int // number of cosets of the extended domain

	circulant   *domain.Domain // size 2k
	proofDomain *domain.Domain // size numProofs
	naive       bool

	// bases[t][r] is the t-th entry of the circulant transform of the SRS
	// vector ([τ^(d·l+r)]₁)_d, so that frequency t is one MSM of size l.
	bases [][]bls12381.G1Affine
}

// NewProver precomputes the tables to open polynomials of polyLen
// coefficients over all cosets of size cosetSize of a domain of numPoints
// elements.
func NewProver(ck *kzg.CommitKey, polyLen, cosetSize, numPoints int) (*Prover, error) {
	switch {
	case !isPowerOfTwo(polyLen), !isPowerOfTwo(cosetSize), !isPowerOfTwo(numPoints):
		return nil, fmt.Errorf("%w: sizes must be powers of two", ErrInvalidParameters)
	case cosetSize >= polyLen:
		return nil, fmt.Errorf("%w: coset size %d >= polynomial size %d", ErrInvalidParameters, cosetSize, polyLen)
	case numPoints < polyLen:
		return nil, fmt.Errorf("%w: %d points cannot hold %d coefficients", ErrInvalidParameters, numPoints, polyLen)
	case len(ck.G1) < polyLen:
		return nil, fmt.Errorf("%w: commit key has %d points, need %d", ErrInvalidParameters, len(ck.G1), polyLen)
	}
	p := &Prover{
		ck:        ck,
		polyLen:   polyLen,
		cosetSize: cosetSize,
		blocks:    polyLen / cosetSize,
		numProofs: numPoints / cosetSize,
	}
	p.circulant = domain.New(uint64(2 * p.blocks))
	p.proofDomain = domain.New(uint64(p.numProofs))

	circulantSize := 2 * p.blocks
	transforms := make([][]bls12381.G1Affine, p.cosetSize)
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for r := range p.cosetSize {
		g.Go(func() error {
			vec := make([]bls12381.G1Jac, circulantSize)
			for d := range vec {
				if d < p.blocks {
					vec[d].FromAffine(&ck.G1[d*p.cosetSize+r])
				} else {
					vec[d] = bls.InfinityG1Jac()
				}
			}
			p.circulant.FFTG1(vec)
			transforms[r] = bls12381.BatchJacobianToAffineG1(vec)
			return nil
		})
	}
	_ = g.Wait()

	p.bases = make([][]bls12381.G1Affine, circulantSize)
	for t := range p.bases {
		p.bases[t] = make([]bls12381.G1Affine, p.cosetSize)
		for r := range p.cosetSize {
			p.bases[t][r] = transforms[r][t]
		}
	}
	return p, nil
}

// Naive returns a prover sharing the same tables whose ComputeProofs
// delegates to ComputeProofsNaive.
func (p *Prover) Naive() *Prover {
	np := *p
	np.naive = true
	return &np
}

// NumProofs returns the number of proofs produced per polynomial.
func (p *Prover) NumProofs() int { return p.numProofs }

// ComputeProofs returns one proof per coset, in bit-reversed coset order, for
// the polynomial with the given coefficients.
func (p *Prover) ComputeProofs(coeffs poly.Polynomial) ([]bls12381.G1Affine, error) {
	if p.naive {
		return p.ComputeProofsNaive(coeffs)
	}
	hComms, err := p.hPolyCommitments(coeffs)
	if err != nil {
		return nil, err
	}
	return p.proofsFromHCommitments(hComms), nil
}

// ComputeProofsNaive computes the same proofs as ComputeProofs committing to
// every h_s polynomial directly. It is much slower and exists to cross-check
// the Toeplitz path.
func (p *Prover) ComputeProofsNaive(coeffs poly.Polynomial) ([]bls12381.G1Affine, error) {
	if len(coeffs) != p.polyLen {
		return nil, fmt.Errorf("%w: %d coefficients, expected %d", ErrInvalidParameters, len(coeffs), p.polyLen)
	}
	hComms := make([]bls12381.G1Jac, p.blocks-1)
	for s := 1; s < p.blocks; s++ {
		h, err := poly.DivideByMonomialFloor(coeffs, s*p.cosetSize)
		if err != nil {
			return nil, err
		}
		c, err := p.ck.Commit(h)
		if err != nil {
			return nil, fmt.Errorf("commit h_%d: %w", s, err)
		}
		hComms[s-1].FromAffine(&c)
	}
	return p.proofsFromHCommitments(hComms), nil
}

// hPolyCommitments returns [h_s(τ)]₁ for s = 1..k-1.
func (p *Prover) hPolyCommitments(coeffs poly.Polynomial) ([]bls12381.G1Jac, error) {
	if len(coeffs) != p.polyLen {
		return nil, fmt.Errorf("%w: %d coefficients, expected %d", ErrInvalidParameters, len(coeffs), p.polyLen)
	}
	k, l := p.blocks, p.cosetSize
	circulantSize := 2 * k

	// for each residue r, the reversed strided coefficients (c_{(k-1-t)·l+r})_t
	// zero padded and transformed
	scalars := make([][]fr.Element, l)
	for r := range l {
		col := make([]fr.Element, circulantSize)
		for t := range k {
			col[t] = coeffs[(k-1-t)*l+r]
		}
		p.circulant.FFT(col)
		scalars[r] = col
	}

	// frequency t: Σ_r scalars[r][t] · bases[t][r]
	freq := make([]bls12381.G1Jac, circulantSize)
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for t := range circulantSize {
		g.Go(func() error {
			col := make([]fr.Element, l)
			for r := range l {
				col[r] = scalars[r][t]
			}
			res, err := bls.LinearCombinationG1Jac(p.bases[t], col)
			if err != nil {
				return err
			}
			freq[t] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("toeplitz products: %w", err)
	}
	p.circulant.IFFTG1(freq)

	// the linear convolution places [h_s] at index k-1-s
	hComms := make([]bls12381.G1Jac, k-1)
	for s := 1; s < k; s++ {
		hComms[s-1] = freq[k-1-s]
	}
	return hComms, nil
}

// proofsFromHCommitments evaluates Σ_s a^(s-1)·[h_s] for every coset a via
// a G1 FFT over the proof domain, then bit-reverses the result.
func (p *Prover) proofsFromHCommitments(hComms []bls12381.G1Jac) []bls12381.G1Affine {
	vec := make([]bls12381.G1Jac, p.numProofs)
	for i := range vec {
		if i < len(hComms) {
			vec[i] = hComms[i]
		} else {
			vec[i] = bls.InfinityG1Jac()
		}
	}
	p.proofDomain.FFTG1(vec)
	domain.BitReverse(vec)
	return bls12381.BatchJacobianToAffineG1(vec)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
