package das

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"runtime"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/crypto/kzg"
	"github.com/vocdoni/davinci-das/crypto/poly"
	"github.com/vocdoni/davinci-das/types"
	"golang.org/x/sync/errgroup"
)

// batchDomainSeparator prefixes the transcript the batch challenge is
// derived from.
const batchDomainSeparator = "RCKZGCBATCH__V1_"

// VerifyCellKZGProof checks the proof of a single cell against the blob
// commitment. A well formed but wrong cell or proof yields false without
// error.
func (c *Context) VerifyCellKZGProof(commitment types.KZGCommitment, cellIndex uint64, cell *types.Cell, proof types.KZGProof) (bool, error) {
	if err := c.acquire(); err != nil {
		return false, err
	}
	defer c.release()
	if cellIndex >= CellsPerExtBlob {
		return false, fmt.Errorf("%w: %d", ErrCellIndexOutOfRange, cellIndex)
	}
	comm, err := c.decodeCommitment(commitment)
	if err != nil {
		return false, err
	}
	pi, err := decodeProof(proof)
	if err != nil {
		return false, err
	}
	evals, err := decodeCell(cell)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidCell, err)
	}
	c.cellDomain.InterpolateOnCoset(evals, c.cosetShiftsInv[cellIndex])
	return c.ok.VerifyCoset(&comm, &c.cosetShifts[cellIndex], evals, &pi)
}

// VerifyCellKZGProofBatch verifies many cell proofs with a single pairing
// check. Cell k belongs to the blob committed to by
// rowCommitments[rowIndices[k]] and sits at column cellIndices[k]. The
// result is true iff every proof is valid, except with negligible
// probability. An empty batch is valid.
func (c *Context) VerifyCellKZGProofBatch(rowCommitments []types.KZGCommitment, rowIndices, cellIndices []uint64, cells []types.Cell, proofs []types.KZGProof) (bool, error) {
	if err := c.acquire(); err != nil {
		return false, err
	}
	defer c.release()
	return c.verifyCellBatch(rowCommitments, rowIndices, cellIndices, cells, proofs)
}

// VerifyCellKZGProofBatchFlat is like VerifyCellKZGProofBatch with one
// commitment per cell. Repeated commitments are folded into a single row.
func (c *Context) VerifyCellKZGProofBatchFlat(commitments []types.KZGCommitment, cellIndices []uint64, cells []types.Cell, proofs []types.KZGProof) (bool, error) {
	if err := c.acquire(); err != nil {
		return false, err
	}
	defer c.release()
	rows := make(map[types.KZGCommitment]uint64, len(commitments))
	rowCommitments := make([]types.KZGCommitment, 0, len(commitments))
	rowIndices := make([]uint64, len(commitments))
	for i, comm := range commitments {
		row, ok := rows[comm]
		if !ok {
			row = uint64(len(rowCommitments))
			rows[comm] = row
			rowCommitments = append(rowCommitments, comm)
		}
		rowIndices[i] = row
	}
	return c.verifyCellBatch(rowCommitments, rowIndices, cellIndices, cells, proofs)
}

func (c *Context) verifyCellBatch(rowCommitments []types.KZGCommitment, rowIndices, cellIndices []uint64, cells []types.Cell, proofs []types.KZGProof) (bool, error) {
	n := len(cells)
	if len(rowIndices) != n || len(cellIndices) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: %d row indices, %d cell indices, %d cells, %d proofs",
			ErrLengthMismatch, len(rowIndices), len(cellIndices), n, len(proofs))
	}
	for k := range n {
		if rowIndices[k] >= uint64(len(rowCommitments)) {
			return false, fmt.Errorf("%w: %d with %d commitments", ErrRowIndexOutOfRange, rowIndices[k], len(rowCommitments))
		}
		if cellIndices[k] >= CellsPerExtBlob {
			return false, fmt.Errorf("%w: %d", ErrCellIndexOutOfRange, cellIndices[k])
		}
	}

	commitments := make([]bls12381.G1Affine, len(rowCommitments))
	for i := range rowCommitments {
		var err error
		if commitments[i], err = c.decodeCommitment(rowCommitments[i]); err != nil {
			return false, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if n == 0 {
		return true, nil
	}

	points := make([]bls12381.G1Affine, n)
	evals := make([][]fr.Element, n)
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for k := range n {
		g.Go(func() error {
			var err error
			if points[k], err = decodeProof(proofs[k]); err != nil {
				return fmt.Errorf("proof %d: %w", k, err)
			}
			if evals[k], err = decodeCell(&cells[k]); err != nil {
				return fmt.Errorf("%w: cell %d: %w", ErrInvalidCell, k, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	r := batchChallenge(rowCommitments, rowIndices, cellIndices, cells, proofs)
	weights := kzg.Powers(r, n)

	// Σ_k r^k·C_{row(k)}, with the weights of each row added up first
	rowWeights := make([]fr.Element, len(rowCommitments))
	for k, row := range rowIndices {
		rowWeights[row].Add(&rowWeights[row], &weights[k])
	}
	commAgg, err := bls.LinearCombinationG1(commitments, rowWeights)
	if err != nil {
		return false, err
	}

	// Σ_k r^k·I_k(X): the weighted evaluations sharing a column are added
	// up, then each column is interpolated once
	interpolation := c.aggregateInterpolation(cellIndices, evals, weights)
	interpComm, err := c.ok.CommitInterpolation(interpolation)
	if err != nil {
		return false, err
	}

	// Σ_k r^k·h_k^|H|·π_k and Σ_k r^k·π_k
	shiftedWeights := make([]fr.Element, n)
	for k, col := range cellIndices {
		shiftedWeights[k].Mul(&weights[k], &c.cosetShiftPows[col])
	}
	proofAggShifted, err := bls.LinearCombinationG1(points, shiftedWeights)
	if err != nil {
		return false, err
	}
	proofAgg, err := bls.LinearCombinationG1(points, weights)
	if err != nil {
		return false, err
	}

	var lhs bls12381.G1Affine
	lhs.Sub(&commAgg, &interpComm)
	lhs.Add(&lhs, &proofAggShifted)
	return c.ok.VerifyAggregated(&lhs, &proofAgg)
}

// aggregateInterpolation returns Σ_k weights[k]·I_k, where I_k interpolates
// evals[k] over the coset of column cellIndices[k].
func (c *Context) aggregateInterpolation(cellIndices []uint64, evals [][]fr.Element, weights []fr.Element) poly.Polynomial {
	columns := make(map[uint64][]fr.Element)
	order := make([]uint64, 0, len(cellIndices))
	for k, col := range cellIndices {
		acc, ok := columns[col]
		if !ok {
			acc = make([]fr.Element, FieldElementsPerCell)
			columns[col] = acc
			order = append(order, col)
		}
		var t fr.Element
		for j := range acc {
			t.Mul(&evals[k][j], &weights[k])
			acc[j].Add(&acc[j], &t)
		}
	}
	result := make(poly.Polynomial, FieldElementsPerCell)
	for _, col := range order {
		acc := columns[col]
		c.cellDomain.InterpolateOnCoset(acc, c.cosetShiftsInv[col])
		for j := range result {
			result[j].Add(&result[j], &acc[j])
		}
	}
	return result
}

// batchChallenge derives the batch weight by hashing every public input of
// the batch.
func batchChallenge(rowCommitments []types.KZGCommitment, rowIndices, cellIndices []uint64, cells []types.Cell, proofs []types.KZGProof) fr.Element {
	h := sha256.New()
	var u64 [8]byte
	writeU64 := func(v uint64) {
		binary.BigEndian.PutUint64(u64[:], v)
		h.Write(u64[:])
	}
	h.Write([]byte(batchDomainSeparator))
	writeU64(FieldElementsPerBlob)
	writeU64(FieldElementsPerCell)
	writeU64(uint64(len(rowCommitments)))
	writeU64(uint64(len(cells)))
	for i := range rowCommitments {
		h.Write(rowCommitments[i][:])
	}
	for k := range cells {
		writeU64(rowIndices[k])
		writeU64(cellIndices[k])
		h.Write(cells[k][:])
		h.Write(proofs[k][:])
	}
	var r fr.Element
	r.SetBytes(h.Sum(nil))
	return r
}
