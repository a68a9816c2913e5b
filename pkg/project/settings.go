package project

// Settings is the read-only configuration input the driver and emitter
// consult throughout a run (spec.md §6). It is parsed from cobra/pflag
// flags in cmd/boomerangc, mirroring the teacher's package-level flag
// variables in cmd/ralph-cc/main.go, gathered here into one struct instead
// of loose globals per the "Project context" design note (spec.md §9).
type Settings struct {
	PrintRTLs        bool
	RemoveLabels     bool
	VerboseOutput    bool
	DecodeChildren   bool
	UsePromotion     bool
	ChangeSignatures bool
	NameParameters   bool
	DebugGen         bool
	DebugSwitch      bool
	OutputDirectory  string

	// WordSize is the target's pointer width in bits, consulted by
	// indirect.Recover's Fortran-style table idiom (SPEC_FULL.md Open
	// Question 3) instead of assuming 32-bit pointers.
	WordSize int
}

// DefaultSettings returns the Settings a fresh cobra invocation with no
// flags set would produce.
func DefaultSettings() Settings {
	return Settings{
		OutputDirectory: ".",
		WordSize:        64,
	}
}
