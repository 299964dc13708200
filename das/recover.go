package das

import (
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/davinci-das/crypto/erasure"
	"github.com/vocdoni/davinci-das/crypto/poly"
	"github.com/vocdoni/davinci-das/log"
	"github.com/vocdoni/davinci-das/types"
)

// RecoverCells returns every cell of a blob given at least half of them.
// cellIndices[i] is the column of cells[i]. The supplied cells are returned
// unchanged at their columns; if the recovered codeword does not match them
// the call fails with ErrRecoveryMismatch.
func (c *Context) RecoverCells(cellIndices []uint64, cells []types.Cell) ([]types.Cell, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()
	recovered, _, err := c.recoverCells(cellIndices, cells)
	return recovered, err
}

// RecoverCellsAndKZGProofs is like RecoverCells and also recomputes the
// proof of every cell.
func (c *Context) RecoverCellsAndKZGProofs(cellIndices []uint64, cells []types.Cell) ([]types.Cell, []types.KZGProof, error) {
	if err := c.acquire(); err != nil {
		return nil, nil, err
	}
	defer c.release()
	recovered, coeffs, err := c.recoverCells(cellIndices, cells)
	if err != nil {
		return nil, nil, err
	}
	proofs, err := c.computeProofs(coeffs)
	if err != nil {
		return nil, nil, err
	}
	return recovered, proofs, nil
}

func (c *Context) recoverCells(cellIndices []uint64, cells []types.Cell) ([]types.Cell, poly.Polynomial, error) {
	start := time.Now()
	if len(cellIndices) != len(cells) {
		return nil, nil, fmt.Errorf("%w: %d indices and %d cells", ErrLengthMismatch, len(cellIndices), len(cells))
	}
	var seen [CellsPerExtBlob]bool
	for _, idx := range cellIndices {
		if idx >= CellsPerExtBlob {
			return nil, nil, fmt.Errorf("%w: %d", ErrCellIndexOutOfRange, idx)
		}
		if seen[idx] {
			return nil, nil, fmt.Errorf("%w: %d", ErrDuplicateCellIndex, idx)
		}
		seen[idx] = true
	}
	if len(cellIndices) < minCellsForRecovery {
		return nil, nil, fmt.Errorf("%w: got %d, need %d", ErrNotEnoughCells, len(cellIndices), minCellsForRecovery)
	}
	blocks, err := decodeCells(cells)
	if err != nil {
		return nil, nil, err
	}

	coeffs, err := c.code.Decode(cellIndices, blocks)
	switch {
	case errors.Is(err, erasure.ErrDegreeTooHigh):
		return nil, nil, fmt.Errorf("%w: %w", ErrRecoveryMismatch, err)
	case err != nil:
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	recovered, err := c.polynomialToCells(coeffs)
	if err != nil {
		return nil, nil, err
	}
	for i, idx := range cellIndices {
		if recovered[idx] != cells[i] {
			return nil, nil, fmt.Errorf("%w: cell %d", ErrRecoveryMismatch, idx)
		}
	}
	log.Timed("cells recovered", start, "known", len(cellIndices))
	return recovered, coeffs, nil
}
