package das

import (
	"context"

	"github.com/vocdoni/davinci-das/types"
	"github.com/vocdoni/davinci-das/workers"
)

// CellsAndProofs is the result of the operations returning cells with their
// proofs.
type CellsAndProofs struct {
	Cells  []types.Cell
	Proofs []types.KZGProof
}

// The Async variants run the blocking operation on the Context worker pool
// and resolve the returned future with its result. They add no state: the
// operation either completes or fails as a whole. After Close the futures
// resolve with ErrContextClosed or workers.ErrPoolStopped.

// BlobToKZGCommitmentAsync is the asynchronous form of BlobToKZGCommitment.
func (c *Context) BlobToKZGCommitmentAsync(blob *types.Blob) *workers.Future[types.KZGCommitment] {
	return workers.Submit(c.pool, "blob_to_commitment", func(context.Context) (types.KZGCommitment, error) {
		return c.BlobToKZGCommitment(blob)
	})
}

// ComputeCellsAsync is the asynchronous form of ComputeCells.
func (c *Context) ComputeCellsAsync(blob *types.Blob) *workers.Future[[]types.Cell] {
	return workers.Submit(c.pool, "compute_cells", func(context.Context) ([]types.Cell, error) {
		return c.ComputeCells(blob)
	})
}

// ComputeCellsAndKZGProofsAsync is the asynchronous form of
// ComputeCellsAndKZGProofs.
func (c *Context) ComputeCellsAndKZGProofsAsync(blob *types.Blob) *workers.Future[CellsAndProofs] {
	return workers.Submit(c.pool, "compute_cells_and_proofs", func(context.Context) (CellsAndProofs, error) {
		cells, proofs, err := c.ComputeCellsAndKZGProofs(blob)
		return CellsAndProofs{Cells: cells, Proofs: proofs}, err
	})
}

// RecoverCellsAsync is the asynchronous form of RecoverCells.
func (c *Context) RecoverCellsAsync(cellIndices []uint64, cells []types.Cell) *workers.Future[[]types.Cell] {
	return workers.Submit(c.pool, "recover_cells", func(context.Context) ([]types.Cell, error) {
		return c.RecoverCells(cellIndices, cells)
	})
}

// RecoverCellsAndKZGProofsAsync is the asynchronous form of
// RecoverCellsAndKZGProofs.
func (c *Context) RecoverCellsAndKZGProofsAsync(cellIndices []uint64, cells []types.Cell) *workers.Future[CellsAndProofs] {
	return workers.Submit(c.pool, "recover_cells_and_proofs", func(context.Context) (CellsAndProofs, error) {
		recovered, proofs, err := c.RecoverCellsAndKZGProofs(cellIndices, cells)
		return CellsAndProofs{Cells: recovered, Proofs: proofs}, err
	})
}

// VerifyCellKZGProofBatchAsync is the asynchronous form of
// VerifyCellKZGProofBatch.
func (c *Context) VerifyCellKZGProofBatchAsync(rowCommitments []types.KZGCommitment, rowIndices, cellIndices []uint64, cells []types.Cell, proofs []types.KZGProof) *workers.Future[bool] {
	return workers.Submit(c.pool, "verify_cell_batch", func(context.Context) (bool, error) {
		return c.VerifyCellKZGProofBatch(rowCommitments, rowIndices, cellIndices, cells, proofs)
	})
}
