// Package decoder defines the external collaborator interfaces the driver
// consumes to turn machine addresses into RTL (spec.md §6): a Decoder that
// turns one address into an instruction's RTL, and a BinaryImage that
// answers read/section/symbol queries against the loaded binary. Both are
// implemented outside this module in production; Fake below is an
// in-memory stand-in used by driver/indirect/structural tests.
package decoder

import "github.com/skyripley/boomerang/pkg/bstmt"

// Address is a native code or data address.
type Address = uint64

// DecodeResult is what decodeInstruction returns for one machine
// instruction: its lifted RTL, the instruction's byte length (so the
// caller can advance to the next address), and whether decoding
// succeeded.
type DecodeResult struct {
	RTL     *bstmt.RTL
	Length  int
	IsValid bool
}

// Decoder lifts machine code into RTL on demand (spec.md §6 "Decoder
// capability").
type Decoder interface {
	DecodeInstruction(addr Address) DecodeResult
	SaveDecodedRTL(addr Address, rtl *bstmt.RTL)
	// Redecode rebuilds a procedure's CFG from scratch, returning whether
	// it succeeded; used by the indirect-transfer restart protocol
	// (spec.md §4.H) and for a first decode of a freshly discovered
	// UserProc.
	Redecode(entry Address) bool
	GetLibSignature(name string) (Signature, bool)
	IsWin32() bool
}

// Signature is a callee's parameter/return shape, used for LibProc calls
// and for seeding a UserProc's initial parameter guess.
type Signature struct {
	Name       string
	NumParams  int
	HasReturn  bool
}

// Section describes one loaded memory region of the binary image.
type Section struct {
	Base      Address
	Size      uint64
	Readable  bool
	Writable  bool
}

// BinaryImage answers queries against the loaded binary (spec.md §6
// "BinaryImage capability").
type BinaryImage interface {
	ReadNative1(addr Address) (uint8, bool)
	ReadNative4(addr Address) (uint32, bool)
	SectionByAddr(addr Address) (Section, bool)
	EntryPoints() []Address
	SymbolAt(addr Address) (string, bool)
}
