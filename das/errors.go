package das

import (
	"errors"
)

// Encoding errors.
var (
	ErrInvalidBlob       = errors.New("invalid blob")
	ErrInvalidCell       = errors.New("invalid cell")
	ErrInvalidCommitment = errors.New("invalid commitment")
	ErrInvalidProof      = errors.New("invalid proof")
	ErrInvalidScalar     = errors.New("invalid field element")
)

// Input consistency errors.
var (
	ErrLengthMismatch      = errors.New("input lengths do not match")
	ErrCellIndexOutOfRange = errors.New("cell index out of range")
	ErrRowIndexOutOfRange  = errors.New("row index out of range")
	ErrDuplicateCellIndex  = errors.New("duplicate cell index")
	ErrNotEnoughCells      = errors.New("not enough cells to recover")
)

// ErrRecoveryMismatch is returned when the recovered codeword is not
// consistent with the supplied cells: they are corrupted, or do not belong to
// the same blob.
var ErrRecoveryMismatch = errors.New("recovered cells do not match the supplied cells")

// ErrContextClosed is returned by every operation on a closed Context.
var ErrContextClosed = errors.New("das context closed")
