package cemit

import (
	"fmt"

	"github.com/skyripley/boomerang/pkg/btypes"
)

// cTypeString renders t as the C base-type string declString splices a
// name into. Array types produce a "[N]" (or "[]" for an unbounded
// array) suffix declString detects and moves after the identifier;
// function-pointer types produce a "(*)(...)"  marker declString expands
// into "(*name)(...)" (spec.md §6: "function pointers become
// R (*name)(P)").
func cTypeString(t btypes.Type) string {
	switch v := t.(type) {
	case nil:
		return "int"
	case btypes.Void:
		return "void"
	case btypes.Integer:
		return integerName(v)
	case btypes.Float:
		if v.Bits >= 64 {
			return "double"
		}
		return "float"
	case btypes.Pointer:
		if fn, ok := v.Pointee.(btypes.Function); ok {
			return fmt.Sprintf("%s (*)(%s)", cTypeString(fn.Returns), paramListString(fn.Params, fn.Variadic))
		}
		// Pointer-to-array displays as pointer-to-element (spec.md §4.B).
		if arr, ok := v.Pointee.(btypes.Array); ok {
			return cTypeString(arr.Base) + " *"
		}
		return cTypeString(v.Pointee) + " *"
	case btypes.Array:
		base := cTypeString(v.Base)
		if v.Length < 0 {
			return base + "[]"
		}
		return fmt.Sprintf("%s[%d]", base, v.Length)
	case btypes.Function:
		return cTypeString(v.Returns)
	case btypes.Compound:
		if v.Name == "" {
			return "struct { " + fieldsString(v.Fields) + " }"
		}
		return "struct " + v.Name
	case btypes.Union:
		if v.Name == "" {
			return "union { " + fieldsString(v.Alternatives) + " }"
		}
		return "union " + v.Name
	case btypes.Named:
		if v.Resolve != nil {
			switch v.Resolve(v.Name).(type) {
			case btypes.Union:
				return "union " + v.Name
			}
		}
		return "struct " + v.Name
	case btypes.Size:
		return sizeName(v.Bits)
	default:
		return "int"
	}
}

func integerName(t btypes.Integer) string {
	base := ""
	switch {
	case t.Bits <= 8:
		base = "char"
	case t.Bits <= 16:
		base = "short"
	case t.Bits <= 32:
		base = "int"
	default:
		base = "long long"
	}
	if t.Sign == btypes.Unsigned {
		return "unsigned " + base
	}
	return base
}

// sizeName renders a structure-unknown fixed-width type (spec.md §3's
// Size variant) as the nearest C99 stdint width, the best-effort
// declaration a size-only type gets absent further type analysis.
func sizeName(bits int) string {
	switch {
	case bits <= 8:
		return "uint8_t"
	case bits <= 16:
		return "uint16_t"
	case bits <= 32:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}

func fieldsString(fields []btypes.Field) string {
	s := ""
	for _, f := range fields {
		s += declString(cTypeString(f.Type), f.Name) + "; "
	}
	return s
}

func paramListString(params []btypes.Type, variadic bool) string {
	if len(params) == 0 && !variadic {
		return "void"
	}
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += cTypeString(p)
	}
	if variadic {
		if s != "" {
			s += ", "
		}
		s += "..."
	}
	return s
}
