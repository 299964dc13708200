package types

import "fmt"

// CellBundle groups the cells of a single blob with their proofs and the
// blob commitment. CellIndices[i] is the column of Cells[i] and Proofs[i].
// A bundle may be partial, holding only a subset of the columns.
type CellBundle struct {
	Commitment  KZGCommitment `json:"commitment" cbor:"1,keyasint"`
	CellIndices []uint64      `json:"cellIndices" cbor:"2,keyasint"`
	Cells       []Cell        `json:"cells" cbor:"3,keyasint"`
	Proofs      []KZGProof    `json:"proofs" cbor:"4,keyasint"`
}

// Validate checks the bundle slices are consistent and the indices are in
// range.
func (b *CellBundle) Validate() error {
	if len(b.CellIndices) != len(b.Cells) || len(b.Cells) != len(b.Proofs) {
		return fmt.Errorf("inconsistent bundle: %d indices, %d cells, %d proofs",
			len(b.CellIndices), len(b.Cells), len(b.Proofs))
	}
	for _, idx := range b.CellIndices {
		if idx >= CellsPerBlob {
			return fmt.Errorf("cell index %d out of range", idx)
		}
	}
	return nil
}

// Len returns the number of cells in the bundle.
func (b *CellBundle) Len() int { return len(b.Cells) }

// Keep returns a new bundle with only the cells for which keep returns true.
func (b *CellBundle) Keep(keep func(index uint64) bool) *CellBundle {
	out := &CellBundle{Commitment: b.Commitment}
	for i, idx := range b.CellIndices {
		if keep(idx) {
			out.CellIndices = append(out.CellIndices, idx)
			out.Cells = append(out.Cells, b.Cells[i])
			out.Proofs = append(out.Proofs, b.Proofs[i])
		}
	}
	return out
}
