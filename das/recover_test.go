package das

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-das/types"
	"github.com/vocdoni/davinci-das/util"
)

func subset(f *blobFixture, indices []uint64) []types.Cell {
	cells := make([]types.Cell, len(indices))
	for i, idx := range indices {
		cells[i] = f.cells[idx]
	}
	return cells
}

func columns(from, to uint64) []uint64 {
	out := make([]uint64, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestRecoverCells(t *testing.T) {
	c := qt.New(t)
	ctx := testContext(c)
	f := newBlobFixture(c, ctx)

	cases := map[string][]uint64{
		"first half":  columns(0, CellsPerExtBlob/2),
		"second half": columns(CellsPerExtBlob/2, CellsPerExtBlob),
		"all":         columns(0, CellsPerExtBlob),
		"random half": util.RandomSubset(CellsPerExtBlob, CellsPerExtBlob/2),
		"random 100":  util.RandomSubset(CellsPerExtBlob, 100),
		"all but one": columns(1, CellsPerExtBlob),
	}
	for name, indices := range cases {
		c.Run(name, func(c *qt.C) {
			recovered, err := ctx.RecoverCells(indices, subset(f, indices))
			c.Assert(err, qt.IsNil)
			c.Assert(recovered, qt.DeepEquals, f.cells)
		})
	}

	c.Run("with proofs", func(c *qt.C) {
		indices := util.RandomSubset(CellsPerExtBlob, 70)
		recovered, proofs, err := ctx.RecoverCellsAndKZGProofs(indices, subset(f, indices))
		c.Assert(err, qt.IsNil)
		c.Assert(recovered, qt.DeepEquals, f.cells)
		c.Assert(proofs, qt.DeepEquals, f.proofs)
	})
}

func TestRecoverCellsErrors(t *testing.T) {
	c := qt.New(t)
	ctx := testContext(c)
	f := newBlobFixture(c, ctx)

	c.Run("not enough cells", func(c *qt.C) {
		indices := util.RandomSubset(CellsPerExtBlob, CellsPerExtBlob/2-1)
		_, err := ctx.RecoverCells(indices, subset(f, indices))
		c.Assert(err, qt.ErrorIs, ErrNotEnoughCells)
	})

	c.Run("duplicate index", func(c *qt.C) {
		indices := columns(0, CellsPerExtBlob/2)
		indices = append(indices, 10)
		_, err := ctx.RecoverCells(indices, subset(f, indices))
		c.Assert(err, qt.ErrorIs, ErrDuplicateCellIndex)

		// duplicates do not count towards the threshold
		indices = append(columns(0, CellsPerExtBlob/2-1), 0)
		_, err = ctx.RecoverCells(indices, subset(f, indices))
		c.Assert(err, qt.ErrorIs, ErrDuplicateCellIndex)
	})

	c.Run("out of range", func(c *qt.C) {
		indices := columns(0, CellsPerExtBlob/2)
		cells := subset(f, indices)
		indices[7] = CellsPerExtBlob
		_, err := ctx.RecoverCells(indices, cells)
		c.Assert(err, qt.ErrorIs, ErrCellIndexOutOfRange)
	})

	c.Run("length mismatch", func(c *qt.C) {
		indices := columns(0, CellsPerExtBlob/2)
		_, err := ctx.RecoverCells(indices, subset(f, indices[1:]))
		c.Assert(err, qt.ErrorIs, ErrLengthMismatch)
	})

	c.Run("non canonical cell", func(c *qt.C) {
		indices := columns(0, CellsPerExtBlob/2)
		cells := subset(f, indices)
		for i := range BytesPerFieldElement {
			cells[2][i] = 0xff
		}
		_, err := ctx.RecoverCells(indices, cells)
		c.Assert(err, qt.ErrorIs, ErrInvalidCell)
	})

	c.Run("corrupted cell", func(c *qt.C) {
		for _, n := range []int{CellsPerExtBlob/2 + 1, CellsPerExtBlob} {
			indices := util.RandomSubset(CellsPerExtBlob, n)
			cells := subset(f, indices)
			cells[n/2][BytesPerFieldElement-1] ^= 1
			_, err := ctx.RecoverCells(indices, cells)
			c.Assert(err, qt.ErrorIs, ErrRecoveryMismatch, qt.Commentf("%d cells", n))
		}
	})

	c.Run("cells of two blobs", func(c *qt.C) {
		other := newBlobFixture(c, ctx)
		indices := columns(0, 80)
		cells := subset(f, indices)
		copy(cells[40:], subset(other, indices[40:]))
		_, err := ctx.RecoverCells(indices, cells)
		c.Assert(err, qt.ErrorIs, ErrRecoveryMismatch)
	})
}
