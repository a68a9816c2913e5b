package btypes

// Meet returns the lattice join of a and b: the more specific of the two
// if they are compatible, a Size if only their widths agree, and a
// diagnostic Void if they are outright incompatible (spec.md §3). Meet is
// commutative and associative (spec.md §8), so callers may fold a slice of
// candidate types left-to-right.
func Meet(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	ra, rb := Resolve(a), Resolve(b)
	if _, ok := rb.(Size); ok {
		if _, ok := ra.(Size); !ok {
			return Meet(b, a)
		}
	}

	switch at := ra.(type) {
	case Void:
		if _, ok := rb.(Void); ok {
			return Void{}
		}
		return diagnostic(a, b)

	case Integer:
		bt, ok := rb.(Integer)
		if !ok {
			if sz, ok2 := rb.(Size); ok2 && sz.Bits == at.Bits {
				return at
			}
			return sizeOrDiagnostic(a, b)
		}
		if at.Bits != bt.Bits {
			return sizeOrDiagnostic(a, b)
		}
		return Integer{Bits: at.Bits, Sign: meetSign(at.Sign, bt.Sign)}

	case Float:
		bt, ok := rb.(Float)
		if !ok || bt.Bits != at.Bits {
			return sizeOrDiagnostic(a, b)
		}
		return at

	case Pointer:
		bt, ok := rb.(Pointer)
		if !ok {
			return sizeOrDiagnostic(a, b)
		}
		return Pointer{Pointee: Meet(at.Pointee, bt.Pointee)}

	case Array:
		bt, ok := rb.(Array)
		if !ok {
			return sizeOrDiagnostic(a, b)
		}
		length := at.Length
		if bt.Length >= 0 && (length < 0 || bt.Length < length) {
			length = bt.Length
		}
		return Array{Base: Meet(at.Base, bt.Base), Length: length}

	case Function:
		bt, ok := rb.(Function)
		if !ok || len(at.Params) != len(bt.Params) || at.Variadic != bt.Variadic {
			return sizeOrDiagnostic(a, b)
		}
		params := make([]Type, len(at.Params))
		for i := range at.Params {
			params[i] = Meet(at.Params[i], bt.Params[i])
		}
		return Function{Returns: Meet(at.Returns, bt.Returns), Params: params, Variadic: at.Variadic}

	case Compound:
		bt, ok := rb.(Compound)
		if !ok || at.Name != bt.Name {
			return sizeOrDiagnostic(a, b)
		}
		return at

	case Union:
		bt, ok := rb.(Union)
		if !ok || at.Name != bt.Name {
			return sizeOrDiagnostic(a, b)
		}
		return at

	case Size:
		if bsz := SizeOf(rb); bsz == at.Bits {
			return rb
		}
		return diagnostic(a, b)
	}
	return diagnostic(a, b)
}

func meetSign(a, b Signedness) Signedness {
	if a == Unknown {
		return b
	}
	if b == Unknown {
		return a
	}
	if a == b {
		return a
	}
	return Unknown
}

// sizeOrDiagnostic falls back to a Size when both sides agree on width,
// else produces the incompatible-type diagnostic.
func sizeOrDiagnostic(a, b Type) Type {
	sa, sb := SizeOf(a), SizeOf(b)
	if sa > 0 && sa == sb {
		return Size{Bits: sa}
	}
	return diagnostic(a, b)
}

// diagnosticMarker marks a Meet result as an incompatible-type diagnostic;
// it is a distinct value from a legitimate Void so callers/tests can tell
// them apart if they need to (spec.md §3: "a diagnostic Void").
type diagnosticMarker struct{ Void }

func (diagnosticMarker) String() string { return "void /* type mismatch */" }

func diagnostic(Type, Type) Type { return diagnosticMarker{} }

// IsDiagnostic reports whether t is the incompatible-type marker Meet
// produces, as opposed to a legitimate Void.
func IsDiagnostic(t Type) bool {
	_, ok := t.(diagnosticMarker)
	return ok
}

// IsCompatibleWith reports whether meeting a and b would not produce the
// diagnostic marker.
func IsCompatibleWith(a, b Type) bool {
	return !IsDiagnostic(Meet(a, b))
}

// Equal reports nominal/structural equality for two resolved types,
// mirroring the teacher's ctypes.Equal recursive-switch shape.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := Resolve(a), Resolve(b)
	switch at := ra.(type) {
	case diagnosticMarker:
		_, ok := rb.(diagnosticMarker)
		return ok
	case Void:
		_, ok := rb.(Void)
		return ok
	case Integer:
		bt, ok := rb.(Integer)
		return ok && at.Bits == bt.Bits && at.Sign == bt.Sign
	case Float:
		bt, ok := rb.(Float)
		return ok && at.Bits == bt.Bits
	case Pointer:
		bt, ok := rb.(Pointer)
		return ok && Equal(at.Pointee, bt.Pointee)
	case Array:
		bt, ok := rb.(Array)
		return ok && at.Length == bt.Length && Equal(at.Base, bt.Base)
	case Compound:
		bt, ok := rb.(Compound)
		return ok && at.Name == bt.Name
	case Union:
		bt, ok := rb.(Union)
		return ok && at.Name == bt.Name
	case Function:
		bt, ok := rb.(Function)
		if !ok || at.Variadic != bt.Variadic || len(at.Params) != len(bt.Params) {
			return false
		}
		if !Equal(at.Returns, bt.Returns) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	case Size:
		bt, ok := rb.(Size)
		return ok && at.Bits == bt.Bits
	}
	return false
}
