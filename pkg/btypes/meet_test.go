package btypes

import "testing"

func TestMeetIntegerSignedness(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want Type
	}{
		{"equal signed", Integer{32, Signed}, Integer{32, Signed}, Integer{32, Signed}},
		{"unknown joins signed", Integer{32, Unknown}, Integer{32, Signed}, Integer{32, Signed}},
		{"unknown joins unsigned", Integer{32, Unsigned}, Integer{32, Unknown}, Integer{32, Unsigned}},
		{"conflicting sign becomes unknown", Integer{32, Signed}, Integer{32, Unsigned}, Integer{32, Unknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Meet(tt.a, tt.b)
			if !Equal(got, tt.want) {
				t.Errorf("Meet(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMeetSizeOnlyAgreement(t *testing.T) {
	got := Meet(Integer{32, Signed}, Float{32})
	want := Size{Bits: 32}
	if !Equal(got, want) {
		t.Errorf("Meet(int32, float32) = %v, want %v", got, want)
	}
}

func TestMeetIncompatibleIsDiagnostic(t *testing.T) {
	got := Meet(Integer{32, Signed}, Integer{64, Signed})
	if !IsDiagnostic(got) {
		t.Errorf("Meet(int32, int64) = %v, want diagnostic", got)
	}
}

func TestMeetCommutative(t *testing.T) {
	pairs := [][2]Type{
		{Integer{32, Signed}, Integer{32, Unsigned}},
		{Pointer{Integer{8, Unsigned}}, Pointer{Integer{8, Signed}}},
		{Integer{16, Signed}, Float{32}},
	}
	for _, p := range pairs {
		ab := Meet(p[0], p[1])
		ba := Meet(p[1], p[0])
		if !Equal(ab, ba) {
			t.Errorf("Meet not commutative for %v, %v: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestMeetAssociative(t *testing.T) {
	a := Integer{32, Unknown}
	b := Integer{32, Signed}
	c := Integer{32, Unknown}
	left := Meet(Meet(a, b), c)
	right := Meet(a, Meet(b, c))
	if !Equal(left, right) {
		t.Errorf("Meet not associative: (a meet b) meet c = %v, a meet (b meet c) = %v", left, right)
	}
}

func TestResolveNamed(t *testing.T) {
	table := map[string]Type{
		"point": Compound{Name: "point", Fields: []Field{{"x", Integer{32, Signed}}, {"y", Integer{32, Signed}}}},
	}
	named := Named{Name: "point", Resolve: func(n string) Type { return table[n] }}
	if !ResolvesToCompound(named) {
		t.Errorf("expected Named(point) to resolve to a Compound")
	}
	c, _ := AsCompound(named)
	if len(c.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(c.Fields))
	}
}

func TestPointerToArrayDisplay(t *testing.T) {
	// spec.md §4.B: pointer-to-array and array-of-T are distinct types,
	// but at C emission time pointer-to-array is displayed as
	// pointer-to-element-of-array. That display rule lives in pkg/cemit;
	// here we only check the two stay structurally distinct types.
	arr := Array{Base: Integer{32, Signed}, Length: 4}
	ptrToArr := Pointer{Pointee: arr}
	arrOfPtr := Array{Base: Pointer{Pointee: Integer{32, Signed}}, Length: 4}
	if Equal(ptrToArr, arrOfPtr) {
		t.Errorf("pointer-to-array must not equal array-of-pointer")
	}
}
