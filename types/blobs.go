package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unsafe"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethkzg "github.com/ethereum/go-ethereum/crypto/kzg4844"
)

const (
	// BlobLength is the number of bytes in a data blob: 4096 field elements
	// of 32 bytes.
	BlobLength = 131072
	// CellLength is the number of bytes in a cell: 64 field elements of 32
	// bytes.
	CellLength = 2048
	// KZGLength is the size of a compressed commitment or proof.
	KZGLength = 48
	// CellsPerBlob is the number of cells (and cell proofs) of an extended
	// blob.
	CellsPerBlob = gethkzg.CellProofsPerBlob
)

// Blob represents a 4844 data blob.
type Blob [BlobLength]byte

// Assert at compile time that Blob is identical to gethkzg.Blob, rather than
// let unsafe.Pointer panic at runtime
var _ [unsafe.Sizeof(Blob{})]byte = [unsafe.Sizeof(gethkzg.Blob{})]byte{}

// NewBlobFromBytes copies data into a new Blob. The input must be exactly
// BlobLength bytes.
func NewBlobFromBytes(data []byte) (*Blob, error) {
	if len(data) != BlobLength {
		return nil, fmt.Errorf("invalid blob size: got %d bytes, expected %d", len(data), BlobLength)
	}
	b := &Blob{}
	copy(b[:], data)
	return b, nil
}

// MustBlobFromBytes is like NewBlobFromBytes but panics on error.
func MustBlobFromBytes(data []byte) *Blob {
	b, err := NewBlobFromBytes(data)
	if err != nil {
		panic(err)
	}
	return b
}

// BlobFromGeth converts (without copy) a gethkzg.Blob into a Blob.
func BlobFromGeth(gethBlob *gethkzg.Blob) *Blob { return (*Blob)(unsafe.Pointer(gethBlob)) }

// AsGeth converts (without copy) the blob to a gethkzg.Blob.
func (b *Blob) AsGeth() *gethkzg.Blob { return (*gethkzg.Blob)(unsafe.Pointer(b)) }

// Bytes returns a slice over the blob data.
// Writing to this slice will modify the underlying array.
func (b *Blob) Bytes() []byte { return b[:] }

// MarshalText implements encoding.TextMarshaler as 0x-prefixed hex.
func (b Blob) MarshalText() ([]byte, error) { return hexutil.Bytes(b[:]).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Blob) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Blob", input, b[:])
}

// Cell is a block of 64 evaluations of an extended blob.
type Cell [CellLength]byte

// NewCellFromBytes copies data into a new Cell. The input must be exactly
// CellLength bytes.
func NewCellFromBytes(data []byte) (*Cell, error) {
	if len(data) != CellLength {
		return nil, fmt.Errorf("invalid cell size: got %d bytes, expected %d", len(data), CellLength)
	}
	c := &Cell{}
	copy(c[:], data)
	return c, nil
}

// Bytes returns a slice over the cell data.
func (c *Cell) Bytes() []byte { return c[:] }

// MarshalText implements encoding.TextMarshaler as 0x-prefixed hex.
func (c Cell) MarshalText() ([]byte, error) { return hexutil.Bytes(c[:]).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cell) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Cell", input, c[:])
}

// KZGCommitment is a serialized commitment to a polynomial.
type KZGCommitment [KZGLength]byte

// Assert at compile time that Commitment is identical to gethkzg.Commitment
var _ [unsafe.Sizeof(KZGCommitment{})]byte = [unsafe.Sizeof(gethkzg.Commitment{})]byte{}

// KZGCommitmentFromGeth converts a gethkzg.Commitment to a KZGCommitment
func KZGCommitmentFromGeth(c gethkzg.Commitment) KZGCommitment { return KZGCommitment(c) }

// AsGeth converts (without copy) the Commitment to a gethkzg.Commitment.
func (c *KZGCommitment) AsGeth() *gethkzg.Commitment { return (*gethkzg.Commitment)(unsafe.Pointer(c)) }

// VersionedHash returns the EIP-4844 versioned hash of the commitment.
func (c *KZGCommitment) VersionedHash() common.Hash {
	return common.Hash(gethkzg.CalcBlobHashV1(sha256.New(), c.AsGeth()))
}

// String returns a string representation of the KZGCommitment.
func (c KZGCommitment) String() string { return hex.EncodeToString(c[:]) }

// MarshalText implements encoding.TextMarshaler as 0x-prefixed hex.
func (c KZGCommitment) MarshalText() ([]byte, error) { return hexutil.Bytes(c[:]).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *KZGCommitment) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("KZGCommitment", input, c[:])
}

// KZGProof is a serialized commitment to a quotient polynomial.
type KZGProof [KZGLength]byte

// Assert at compile time that KZGProof is identical to gethkzg.Proof
var _ [unsafe.Sizeof(KZGProof{})]byte = [unsafe.Sizeof(gethkzg.Proof{})]byte{}

// KZGProofFromGeth converts a gethkzg.Proof to a KZGProof
func KZGProofFromGeth(p gethkzg.Proof) KZGProof { return KZGProof(p) }

// AsGeth converts (without copy) the KZGProof to a gethkzg.Proof.
func (p *KZGProof) AsGeth() *gethkzg.Proof { return (*gethkzg.Proof)(unsafe.Pointer(p)) }

// String returns a string representation of the KZGProof.
func (p KZGProof) String() string { return hex.EncodeToString(p[:]) }

// MarshalText implements encoding.TextMarshaler as 0x-prefixed hex.
func (p KZGProof) MarshalText() ([]byte, error) { return hexutil.Bytes(p[:]).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *KZGProof) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("KZGProof", input, p[:])
}
