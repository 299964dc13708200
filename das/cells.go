package das

import (
	"errors"
	"fmt"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/kzg"
	"github.com/vocdoni/davinci-das/crypto/poly"
	"github.com/vocdoni/davinci-das/log"
	"github.com/vocdoni/davinci-das/types"
	"golang.org/x/sync/errgroup"
)

// ErrProverDisabled is returned by proof computing operations on a Context
// created WithoutProver.
var ErrProverDisabled = errors.New("cell prover disabled")

// BlobToKZGCommitment returns the commitment to the polynomial whose
// evaluations over the blob domain are the blob elements.
func (c *Context) BlobToKZGCommitment(blob *types.Blob) (types.KZGCommitment, error) {
	if err := c.acquire(); err != nil {
		return types.KZGCommitment{}, err
	}
	defer c.release()
	coeffs, err := c.blobToPolynomial(blob)
	if err != nil {
		return types.KZGCommitment{}, err
	}
	commitment, err := c.ck.Commit(coeffs)
	if err != nil {
		return types.KZGCommitment{}, fmt.Errorf("commit: %w", err)
	}
	return types.KZGCommitment(bls.EncodeG1(&commitment)), nil
}

// ComputeCells extends the blob and returns its CellsPerExtBlob cells in
// column order.
func (c *Context) ComputeCells(blob *types.Blob) ([]types.Cell, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()
	start := time.Now()
	coeffs, err := c.blobToPolynomial(blob)
	if err != nil {
		return nil, err
	}
	cells, err := c.polynomialToCells(coeffs)
	if err != nil {
		return nil, err
	}
	log.Timed("cells computed", start)
	return cells, nil
}

// ComputeCellsAndKZGProofs returns the cells of the blob together with the
// proof of each cell. The extension and the proofs are computed
// concurrently.
func (c *Context) ComputeCellsAndKZGProofs(blob *types.Blob) ([]types.Cell, []types.KZGProof, error) {
	if err := c.acquire(); err != nil {
		return nil, nil, err
	}
	defer c.release()
	start := time.Now()
	coeffs, err := c.blobToPolynomial(blob)
	if err != nil {
		return nil, nil, err
	}
	cells, proofs, err := c.cellsAndProofs(coeffs)
	if err != nil {
		return nil, nil, err
	}
	log.Timed("cells and proofs computed", start)
	return cells, proofs, nil
}

// CellsToBlob is the inverse of ComputeCells: it takes every cell, in column
// order, and returns the original blob. The cells must be a valid codeword.
func (c *Context) CellsToBlob(cells []types.Cell) (*types.Blob, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()
	if len(cells) != CellsPerExtBlob {
		return nil, fmt.Errorf("%w: %d cells, expected %d", ErrLengthMismatch, len(cells), CellsPerExtBlob)
	}
	indices := make([]uint64, CellsPerExtBlob)
	for i := range indices {
		indices[i] = uint64(i)
	}
	blocks, err := decodeCells(cells)
	if err != nil {
		return nil, err
	}
	coeffs, err := c.code.Decode(indices, blocks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCell, err)
	}
	c.blobDomain.FFTBitReversed(coeffs)
	blob := &types.Blob{}
	bls.EncodeScalars(blob[:], coeffs)
	return blob, nil
}

// ComputeKZGProof opens the blob polynomial at z. It returns the proof and
// the evaluation y.
func (c *Context) ComputeKZGProof(blob *types.Blob, z Scalar) (types.KZGProof, Scalar, error) {
	if err := c.acquire(); err != nil {
		return types.KZGProof{}, Scalar{}, err
	}
	defer c.release()
	point, err := bls.DecodeScalar(z[:])
	if err != nil {
		return types.KZGProof{}, Scalar{}, fmt.Errorf("%w: %w", ErrInvalidScalar, err)
	}
	coeffs, err := c.blobToPolynomial(blob)
	if err != nil {
		return types.KZGProof{}, Scalar{}, err
	}
	y, proof, err := kzg.Open(c.ck, coeffs, &point)
	if err != nil {
		return types.KZGProof{}, Scalar{}, fmt.Errorf("open: %w", err)
	}
	return types.KZGProof(bls.EncodeG1(&proof)), bls.EncodeScalar(&y), nil
}

// EvaluateBlob evaluates the blob polynomial at z directly from its
// evaluation form.
func (c *Context) EvaluateBlob(blob *types.Blob, z Scalar) (Scalar, error) {
	if err := c.acquire(); err != nil {
		return Scalar{}, err
	}
	defer c.release()
	point, err := bls.DecodeScalar(z[:])
	if err != nil {
		return Scalar{}, fmt.Errorf("%w: %w", ErrInvalidScalar, err)
	}
	evals, err := decodeBlob(blob)
	if err != nil {
		return Scalar{}, err
	}
	y, err := poly.EvaluateBarycentric(c.blobRoots, evals, &point)
	if err != nil {
		return Scalar{}, err
	}
	return bls.EncodeScalar(&y), nil
}

// VerifyKZGProof checks that the polynomial committed to evaluates to y at
// z. It returns false, without error, for a well formed but wrong proof.
func (c *Context) VerifyKZGProof(commitment types.KZGCommitment, z, y Scalar, proof types.KZGProof) (bool, error) {
	if err := c.acquire(); err != nil {
		return false, err
	}
	defer c.release()
	comm, err := c.decodeCommitment(commitment)
	if err != nil {
		return false, err
	}
	pi, err := decodeProof(proof)
	if err != nil {
		return false, err
	}
	point, err := bls.DecodeScalar(z[:])
	if err != nil {
		return false, fmt.Errorf("%w: z: %w", ErrInvalidScalar, err)
	}
	value, err := bls.DecodeScalar(y[:])
	if err != nil {
		return false, fmt.Errorf("%w: y: %w", ErrInvalidScalar, err)
	}
	return c.ok.Verify(&comm, &point, &value, &pi)
}

// blobToPolynomial decodes the blob evaluations and interpolates them into
// coefficient form.
func (c *Context) blobToPolynomial(blob *types.Blob) (poly.Polynomial, error) {
	evals, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	c.blobDomain.IFFTBitReversed(evals)
	return evals, nil
}

func (c *Context) polynomialToCells(coeffs poly.Polynomial) ([]types.Cell, error) {
	evals, err := c.code.Encode(coeffs)
	if err != nil {
		return nil, err
	}
	cells := make([]types.Cell, CellsPerExtBlob)
	for i := range cells {
		bls.EncodeScalars(cells[i][:], evals[i*FieldElementsPerCell:(i+1)*FieldElementsPerCell])
	}
	return cells, nil
}

func (c *Context) computeProofs(coeffs poly.Polynomial) ([]types.KZGProof, error) {
	if c.prover == nil {
		return nil, ErrProverDisabled
	}
	points, err := c.prover.ComputeProofs(coeffs)
	if err != nil {
		return nil, fmt.Errorf("cell proofs: %w", err)
	}
	return types.SliceOf(points, func(p bls12381.G1Affine) types.KZGProof {
		return types.KZGProof(bls.EncodeG1(&p))
	}), nil
}

func (c *Context) cellsAndProofs(coeffs poly.Polynomial) ([]types.Cell, []types.KZGProof, error) {
	var (
		cells  []types.Cell
		proofs []types.KZGProof
	)
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		cells, err = c.polynomialToCells(coeffs)
		return err
	})
	g.Go(func() (err error) {
		proofs, err = c.computeProofs(coeffs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cells, proofs, nil
}

func decodeBlob(blob *types.Blob) ([]fr.Element, error) {
	evals := make([]fr.Element, FieldElementsPerBlob)
	if err := bls.DecodeScalars(evals, blob[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBlob, err)
	}
	return evals, nil
}

func decodeCell(cell *types.Cell) ([]fr.Element, error) {
	evals := make([]fr.Element, FieldElementsPerCell)
	if err := bls.DecodeScalars(evals, cell[:]); err != nil {
		return nil, err
	}
	return evals, nil
}

func decodeCells(cells []types.Cell) ([][]fr.Element, error) {
	blocks := make([][]fr.Element, len(cells))
	for i := range cells {
		var err error
		if blocks[i], err = decodeCell(&cells[i]); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrInvalidCell, i, err)
		}
	}
	return blocks, nil
}

func decodeProof(proof types.KZGProof) (bls12381.G1Affine, error) {
	p, err := bls.DecodeG1(proof[:])
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidProof, err)
	}
	return p, nil
}

// decodeCommitment decompresses a commitment, going through the cache when
// enabled.
func (c *Context) decodeCommitment(commitment types.KZGCommitment) (bls12381.G1Affine, error) {
	if c.commitments != nil {
		if p, ok := c.commitments.Get(commitment); ok {
			return p, nil
		}
	}
	p, err := bls.DecodeG1(commitment[:])
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidCommitment, err)
	}
	if c.commitments != nil {
		c.commitments.Add(commitment, p)
	}
	return p, nil
}
