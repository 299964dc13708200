// Package das is the data availability sampling engine: it commits to blobs,
// extends them into cells with per-cell KZG proofs, verifies cell proofs one
// by one or in batches, and recovers every cell of a blob from any half of
// them.
//
// All operations go through a Context, which owns the trusted setup and the
// tables derived from it. A Context is safe for concurrent use; Close
// releases it once the in-flight calls return.
package das

import (
	"context"
	"fmt"
	"sync"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
	"github.com/vocdoni/davinci-das/config"
	"github.com/vocdoni/davinci-das/crypto/domain"
	"github.com/vocdoni/davinci-das/crypto/erasure"
	"github.com/vocdoni/davinci-das/crypto/fk20"
	"github.com/vocdoni/davinci-das/crypto/kzg"
	"github.com/vocdoni/davinci-das/log"
	"github.com/vocdoni/davinci-das/types"
	"github.com/vocdoni/davinci-das/workers"
)

// DefaultCommitmentCacheSize is the number of decompressed commitments kept
// by default.
const DefaultCommitmentCacheSize = 1024

type options struct {
	workers        int
	cacheSize      int
	naiveProofs    bool
	proverDisabled bool
}

// Option configures a Context.
type Option func(*options)

// WithWorkers sets the number of goroutines serving the Async operations.
// Zero or negative values use one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCommitmentCacheSize sets the number of decompressed commitments kept
// in memory. Zero disables the cache.
func WithCommitmentCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithNaiveProver computes cell proofs with one commitment per quotient
// instead of the amortized prover. It is much slower and meant for
// debugging.
func WithNaiveProver() Option {
	return func(o *options) { o.naiveProofs = true }
}

// WithoutProver skips the prover precomputation. Proof computing operations
// then fail, which suits verification only nodes.
func WithoutProver() Option {
	return func(o *options) { o.proverDisabled = true }
}

// Context owns the trusted setup and every table derived from it.
type Context struct {
	mu     sync.RWMutex
	closed bool

	ck     *kzg.CommitKey
	ok     *kzg.OpeningKey
	prover *fk20.Prover
	code   *erasure.Code

	blobDomain *domain.Domain // size FieldElementsPerBlob
	cellDomain *domain.Domain // size FieldElementsPerCell
	// blobRoots holds the blob domain in bit-reversed order, the order of
	// the blob evaluations.
	blobRoots []fr.Element
	// cosetShifts[i] is the generator h_i of the coset of cell i, and
	// cosetShiftsInv its inverse.
	cosetShifts    []fr.Element
	cosetShiftsInv []fr.Element
	// cosetShiftPows[i] = h_i^FieldElementsPerCell, the root of the
	// vanishing polynomial of the coset of cell i
	cosetShiftPows []fr.Element

	commitments *lru.Cache[types.KZGCommitment, bls12381.G1Affine]
	pool        *workers.Pool
	noProver    bool
}

// New builds a Context from a monomial SRS holding at least
// FieldElementsPerBlob G1 points and FieldElementsPerCell+1 G2 points.
func New(srs *kzg.SRS, opts ...Option) (*Context, error) {
	start := time.Now()
	o := options{cacheSize: DefaultCommitmentCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if srs == nil {
		return nil, fmt.Errorf("%w: nil SRS", kzg.ErrInvalidSRS)
	}
	if len(srs.G1) < FieldElementsPerBlob {
		return nil, fmt.Errorf("%w: %d G1 points, need %d", kzg.ErrInvalidSRS, len(srs.G1), FieldElementsPerBlob)
	}
	ok, err := srs.OpeningKey(FieldElementsPerCell)
	if err != nil {
		return nil, err
	}
	code, err := erasure.New(FieldElementsPerBlob, FieldElementsPerCell, CellsPerExtBlob)
	if err != nil {
		return nil, err
	}
	c := &Context{
		ck:         &kzg.CommitKey{G1: srs.G1[:FieldElementsPerBlob]},
		ok:         ok,
		code:       code,
		blobDomain: domain.New(FieldElementsPerBlob),
		cellDomain: domain.New(FieldElementsPerCell),
		noProver:   o.proverDisabled,
	}
	c.blobRoots = append([]fr.Element(nil), c.blobDomain.Roots...)
	domain.BitReverse(c.blobRoots)

	c.cosetShifts = make([]fr.Element, CellsPerExtBlob)
	c.cosetShiftPows = make([]fr.Element, CellsPerExtBlob)
	ext := code.Domain()
	for i := range c.cosetShifts {
		c.cosetShifts[i] = ext.CosetShift(uint64(i), CellsPerExtBlob)
		c.cosetShiftPows[i] = ext.Roots[FieldElementsPerCell*domain.ReverseBits(uint64(i), CellsPerExtBlob)]
	}
	c.cosetShiftsInv = fr.BatchInvert(c.cosetShifts)

	if !o.proverDisabled {
		if o.naiveProofs {
			log.Warnw("using naive cell prover")
		}
		c.prover, err = fk20.NewProver(c.ck, FieldElementsPerBlob, FieldElementsPerCell, FieldElementsPerExtBlob)
		if err != nil {
			return nil, err
		}
		if o.naiveProofs {
			c.prover = c.prover.Naive()
		}
	}
	if o.cacheSize > 0 {
		if c.commitments, err = lru.New[types.KZGCommitment, bls12381.G1Affine](o.cacheSize); err != nil {
			return nil, fmt.Errorf("commitment cache: %w", err)
		}
	}
	c.pool = workers.NewPool(o.workers, 0)
	c.pool.Start(context.Background())

	log.Infow("das context ready",
		"took", time.Since(start).String(),
		"prover", !o.proverDisabled,
		"cache", o.cacheSize)
	return c, nil
}

// NewFromFile builds a Context from a trusted setup JSON file.
func NewFromFile(path string, opts ...Option) (*Context, error) {
	srs, err := config.LoadTrustedSetup(path)
	if err != nil {
		return nil, err
	}
	return New(srs, opts...)
}

// NewInsecure builds a Context from a setup derived from a known secret,
// for tests and development only. A nil secret uses
// config.DefaultInsecureSecret.
func NewInsecure(secret *uint256.Int, opts ...Option) (*Context, error) {
	srs, err := config.InsecureSRS(secret)
	if err != nil {
		return nil, err
	}
	return New(srs, opts...)
}

// Close waits for the in-flight operations, releases the tables and stops
// the worker pool. Further calls fail with ErrContextClosed. Close is
// idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.ck, c.ok, c.prover, c.code = nil, nil, nil, nil
	c.blobRoots, c.cosetShifts, c.cosetShiftsInv, c.cosetShiftPows = nil, nil, nil, nil
	if c.commitments != nil {
		c.commitments.Purge()
	}
	c.mu.Unlock()

	c.pool.Stop()
	log.Infow("das context closed")
	return nil
}

// acquire takes a read lock for the duration of an operation. The caller
// must call release when it returns nil.
func (c *Context) acquire() error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrContextClosed
	}
	return nil
}

func (c *Context) release() { c.mu.RUnlock() }
