package das

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-das/types"
)

func TestVerifyCellKZGProof(t *testing.T) {
	c := qt.New(t)
	ctx := testContext(c)
	f := newBlobFixture(c, ctx)

	c.Run("every cell verifies", func(c *qt.C) {
		for i := range f.cells {
			ok, err := ctx.VerifyCellKZGProof(f.commitment, uint64(i), &f.cells[i], f.proofs[i])
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsTrue, qt.Commentf("cell %d", i))
		}
	})

	c.Run("flipped cell bit", func(c *qt.C) {
		for _, i := range []int{0, 63, 64, 127} {
			cell := f.cells[i]
			// lowest bit of an element keeps it canonical
			cell[(i%FieldElementsPerCell+1)*BytesPerFieldElement-1] ^= 1
			ok, err := ctx.VerifyCellKZGProof(f.commitment, uint64(i), &cell, f.proofs[i])
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsFalse, qt.Commentf("cell %d", i))
		}
	})

	c.Run("wrong index or proof", func(c *qt.C) {
		ok, err := ctx.VerifyCellKZGProof(f.commitment, 1, &f.cells[0], f.proofs[0])
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
		ok, err = ctx.VerifyCellKZGProof(f.commitment, 0, &f.cells[0], f.proofs[1])
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
	})

	c.Run("encoding errors", func(c *qt.C) {
		_, err := ctx.VerifyCellKZGProof(f.commitment, CellsPerExtBlob, &f.cells[0], f.proofs[0])
		c.Assert(err, qt.ErrorIs, ErrCellIndexOutOfRange)

		cell := f.cells[3]
		for i := range BytesPerFieldElement {
			cell[i] = 0xff
		}
		_, err = ctx.VerifyCellKZGProof(f.commitment, 3, &cell, f.proofs[3])
		c.Assert(err, qt.ErrorIs, ErrInvalidCell)

		proof := f.proofs[3]
		proof[0] &^= 0x80 // clear the compression flag
		_, err = ctx.VerifyCellKZGProof(f.commitment, 3, &f.cells[3], proof)
		c.Assert(err, qt.ErrorIs, ErrInvalidProof)
	})
}

func TestVerifyCellKZGProofBatch(t *testing.T) {
	c := qt.New(t)
	ctx := testContext(c)
	blobs := []*blobFixture{newBlobFixture(c, ctx), newBlobFixture(c, ctx)}
	commitments := []types.KZGCommitment{blobs[0].commitment, blobs[1].commitment}

	// a batch mixing both blobs, with repeated columns across rows
	var rows, cols []uint64
	var cells []types.Cell
	var proofs []types.KZGProof
	for _, col := range []uint64{0, 5, 5, 77, 127, 64, 3} {
		for row, f := range blobs {
			if col == 3 && row == 1 {
				continue
			}
			rows = append(rows, uint64(row))
			cols = append(cols, col)
			cells = append(cells, f.cells[col])
			proofs = append(proofs, f.proofs[col])
		}
	}

	ok, err := ctx.VerifyCellKZGProofBatch(commitments, rows, cols, cells, proofs)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	c.Run("equivalent to single verification", func(c *qt.C) {
		for k := range cells {
			bad := append([]types.Cell(nil), cells...)
			bad[k][BytesPerFieldElement-1] ^= 1
			single, err := ctx.VerifyCellKZGProof(commitments[rows[k]], cols[k], &bad[k], proofs[k])
			c.Assert(err, qt.IsNil)
			c.Assert(single, qt.IsFalse)
			ok, err := ctx.VerifyCellKZGProofBatch(commitments, rows, cols, bad, proofs)
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsFalse, qt.Commentf("cell %d", k))
		}
	})

	c.Run("swapped rows", func(c *qt.C) {
		swapped := append([]uint64(nil), rows...)
		swapped[0], swapped[1] = swapped[1], swapped[0]
		ok, err := ctx.VerifyCellKZGProofBatch(commitments, swapped, cols, cells, proofs)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
	})

	c.Run("swapped proofs", func(c *qt.C) {
		// entries 2 and 3 share column 5 across rows, 0 and 2 share row 0
		// across columns
		for _, pair := range [][2]int{{2, 3}, {0, 2}} {
			i, j := pair[0], pair[1]
			c.Assert(proofs[i], qt.Not(qt.Equals), proofs[j])
			swapped := append([]types.KZGProof(nil), proofs...)
			swapped[i], swapped[j] = swapped[j], swapped[i]
			ok, err := ctx.VerifyCellKZGProofBatch(commitments, rows, cols, cells, swapped)
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsFalse, qt.Commentf("swapped %d and %d", i, j))
		}
	})

	c.Run("flat", func(c *qt.C) {
		flat := make([]types.KZGCommitment, len(rows))
		for k, row := range rows {
			flat[k] = commitments[row]
		}
		ok, err := ctx.VerifyCellKZGProofBatchFlat(flat, cols, cells, proofs)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
	})

	c.Run("whole blob", func(c *qt.C) {
		f := blobs[0]
		rows := make([]uint64, CellsPerExtBlob)
		cols := make([]uint64, CellsPerExtBlob)
		for i := range cols {
			cols[i] = uint64(i)
		}
		ok, err := ctx.VerifyCellKZGProofBatch([]types.KZGCommitment{f.commitment}, rows, cols, f.cells, f.proofs)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
	})

	c.Run("empty batch", func(c *qt.C) {
		ok, err := ctx.VerifyCellKZGProofBatch(nil, nil, nil, nil, nil)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		ok, err = ctx.VerifyCellKZGProofBatch(commitments, nil, nil, nil, nil)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
	})

	c.Run("input errors", func(c *qt.C) {
		_, err := ctx.VerifyCellKZGProofBatch(commitments, rows[1:], cols, cells, proofs)
		c.Assert(err, qt.ErrorIs, ErrLengthMismatch)
		_, err = ctx.VerifyCellKZGProofBatch(commitments, rows, cols, cells, proofs[1:])
		c.Assert(err, qt.ErrorIs, ErrLengthMismatch)

		badRows := append([]uint64(nil), rows...)
		badRows[3] = 2
		_, err = ctx.VerifyCellKZGProofBatch(commitments, badRows, cols, cells, proofs)
		c.Assert(err, qt.ErrorIs, ErrRowIndexOutOfRange)

		badCols := append([]uint64(nil), cols...)
		badCols[3] = CellsPerExtBlob
		_, err = ctx.VerifyCellKZGProofBatch(commitments, rows, badCols, cells, proofs)
		c.Assert(err, qt.ErrorIs, ErrCellIndexOutOfRange)

		badComms := []types.KZGCommitment{commitments[0], {}}
		_, err = ctx.VerifyCellKZGProofBatch(badComms, rows, cols, cells, proofs)
		c.Assert(err, qt.ErrorIs, ErrInvalidCommitment)

		badProofs := append([]types.KZGProof(nil), proofs...)
		badProofs[5] = types.KZGProof{}
		_, err = ctx.VerifyCellKZGProofBatch(commitments, rows, cols, cells, badProofs)
		c.Assert(err, qt.ErrorIs, ErrInvalidProof)
	})
}
