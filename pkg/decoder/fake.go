package decoder

import "github.com/skyripley/boomerang/pkg/bstmt"

// FakeInstruction is one hand-built instruction entry in a Fake decoder's
// program image: the RTL it decodes to and its byte length.
type FakeInstruction struct {
	RTL     *bstmt.RTL
	Length  int
	IsValid bool
}

// Fake is an in-memory Decoder+BinaryImage over a literal instruction
// map, grounded on the teacher's pattern (pkg/rtlgen's tests) of
// hand-building small CFG/function fixtures as Go literals rather than
// driving a real parser. Used by driver/indirect/structural tests so
// they do not depend on a real disassembler.
type Fake struct {
	Instructions map[Address]FakeInstruction
	Signatures   map[string]Signature
	Symbols      map[Address]string
	Sections     []Section
	Win32        bool

	// Words holds 4-byte little-endian values at word-aligned addresses,
	// letting tests build a switch-table image for indirect.Recover to
	// read via ReadNative4.
	Words map[Address]uint32

	saved map[Address]FakeInstruction
}

// NewFake returns an empty Fake decoder/image.
func NewFake() *Fake {
	return &Fake{
		Instructions: make(map[Address]FakeInstruction),
		Signatures:   make(map[string]Signature),
		Symbols:      make(map[Address]string),
		Words:        make(map[Address]uint32),
		saved:        make(map[Address]FakeInstruction),
	}
}

// DecodeInstruction prefers a previously saved override (the restart
// protocol's indirect.Recover rewrite) over the original instruction
// image entry, so a procedure that clears its CFG and redecodes picks up
// newly-recovered switch-table statements instead of re-discovering the
// same raw indirect transfer.
func (f *Fake) DecodeInstruction(addr Address) DecodeResult {
	if inst, ok := f.saved[addr]; ok {
		return DecodeResult{RTL: inst.RTL, Length: inst.Length, IsValid: inst.IsValid}
	}
	inst, ok := f.Instructions[addr]
	if !ok {
		return DecodeResult{IsValid: false}
	}
	return DecodeResult{RTL: inst.RTL, Length: inst.Length, IsValid: inst.IsValid}
}

// SaveDecodedRTL overrides addr's instruction for every future
// DecodeInstruction call, carrying forward the original entry's length
// when one exists so callers only need to pass the rewritten RTL.
func (f *Fake) SaveDecodedRTL(addr Address, rtl *bstmt.RTL) {
	length := 0
	if inst, ok := f.Instructions[addr]; ok {
		length = inst.Length
	}
	f.saved[addr] = FakeInstruction{RTL: rtl, Length: length, IsValid: true}
}

// Redecode reports success for Fake iff entry is a key of Instructions:
// every address it knows about was already validated when added there.
func (f *Fake) Redecode(entry Address) bool {
	_, ok := f.Instructions[entry]
	return ok
}

func (f *Fake) GetLibSignature(name string) (Signature, bool) {
	s, ok := f.Signatures[name]
	return s, ok
}

func (f *Fake) IsWin32() bool { return f.Win32 }

func (f *Fake) ReadNative1(addr Address) (uint8, bool) {
	for _, sec := range f.Sections {
		if addr >= sec.Base && addr < sec.Base+sec.Size && sec.Readable {
			return 0, true
		}
	}
	return 0, false
}

func (f *Fake) ReadNative4(addr Address) (uint32, bool) {
	if w, ok := f.Words[addr]; ok {
		return w, true
	}
	for _, sec := range f.Sections {
		if addr >= sec.Base && addr < sec.Base+sec.Size && sec.Readable {
			return 0, true
		}
	}
	return 0, false
}

func (f *Fake) SectionByAddr(addr Address) (Section, bool) {
	for _, sec := range f.Sections {
		if addr >= sec.Base && addr < sec.Base+sec.Size {
			return sec, true
		}
	}
	return Section{}, false
}

func (f *Fake) EntryPoints() []Address {
	var out []Address
	for addr := range f.Instructions {
		out = append(out, addr)
	}
	return out
}

func (f *Fake) SymbolAt(addr Address) (string, bool) {
	name, ok := f.Symbols[addr]
	return name, ok
}
