package das

import (
	"github.com/vocdoni/davinci-das/crypto/bls"
	"github.com/vocdoni/davinci-das/types"
)

const (
	// BytesPerFieldElement is the size of a serialized scalar.
	BytesPerFieldElement = bls.BytesPerScalar
	// FieldElementsPerBlob is the number of scalars of a blob, the number of
	// coefficients of its polynomial.
	FieldElementsPerBlob = types.BlobLength / BytesPerFieldElement
	// BytesPerBlob is the size of a serialized blob.
	BytesPerBlob = types.BlobLength
	// FieldElementsPerExtBlob is the size of the extended evaluation domain.
	FieldElementsPerExtBlob = 2 * FieldElementsPerBlob
	// FieldElementsPerCell is the number of evaluations held by a cell.
	FieldElementsPerCell = types.CellLength / BytesPerFieldElement
	// BytesPerCell is the size of a serialized cell.
	BytesPerCell = types.CellLength
	// CellsPerExtBlob is the number of cells (columns) of an extended blob.
	CellsPerExtBlob = FieldElementsPerExtBlob / FieldElementsPerCell
	// BytesPerCommitment is the size of a compressed commitment.
	BytesPerCommitment = bls.BytesPerG1
	// BytesPerProof is the size of a compressed proof.
	BytesPerProof = bls.BytesPerG1
	// BytesPerG2Point is the size of a compressed G2 point.
	BytesPerG2Point = bls.BytesPerG2

	// minCellsForRecovery is the number of distinct cells holding as many
	// evaluations as the blob has coefficients.
	minCellsForRecovery = CellsPerExtBlob / 2
)

// Scalar is a serialized field element: 32 big-endian bytes.
type Scalar = [BytesPerFieldElement]byte

// compile time checks of the relations the engine relies on
var (
	_ [CellsPerExtBlob - types.CellsPerBlob]struct{}
	_ [types.CellsPerBlob - CellsPerExtBlob]struct{}
	_ [types.KZGLength - BytesPerCommitment]struct{}
	_ [BytesPerCommitment - types.KZGLength]struct{}
)
