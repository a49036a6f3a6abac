package typesystem

import "testing"

func TestEqual(t *testing.T) {
	inc := TFunc{Params: []Type{Int}, ReturnType: Int}
	tests := []struct {
		a, b Type
		want bool
	}{
		{Int, Int, true},
		{Int, Bool, false},
		{TStruct{Name: "P"}, TStruct{Name: "P"}, true},
		{TStruct{Name: "P"}, TEnum{Name: "P"}, false},
		{inc, TFunc{Params: []Type{Int}, ReturnType: Int}, true},
		{inc, TFunc{Params: []Type{Bool}, ReturnType: Int}, false},
		{inc, TFunc{ReturnType: Int}, false},
		{Never, Never, true},
		{Never, Int, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompatibleAndUnify(t *testing.T) {
	if !Compatible(Int, Never) || !Compatible(Bool, Error) || Compatible(Int, Bool) {
		t.Errorf("Never and Error are compatible with everything, nothing else widens")
	}
	if !Compatible(TFunc{Params: []Type{Int}, ReturnType: Int}, TFunc{Params: []Type{Int}, ReturnType: Never}) {
		t.Errorf("a diverging function fits any return type")
	}

	if got, ok := Unify(Never, Int); !ok || got != Int {
		t.Errorf("Unify(Never, Int) = %s, %v", got, ok)
	}
	if got, ok := Unify(String, Never); !ok || got != String {
		t.Errorf("Unify(String, Never) = %s, %v", got, ok)
	}
	if got, ok := Unify(Int, Bool); ok || !IsError(got) {
		t.Errorf("Unify(Int, Bool) should fail")
	}
	if got, ok := Unify(Error, Int); !ok || !IsError(got) {
		t.Errorf("Error should absorb")
	}
}

func TestStrings(t *testing.T) {
	f := TFunc{Params: []Type{Int, TFunc{ReturnType: Unit}}, ReturnType: Bool}
	if got := f.String(); got != "fn(Int, fn() -> Unit) -> Bool" {
		t.Errorf("got %q", got)
	}
	if _, ok := Builtin("String"); !ok {
		t.Errorf("String is a builtin")
	}
	if _, ok := Builtin("Float"); ok {
		t.Errorf("Float is not a builtin")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.AddEnum(&EnumInfo{Name: "E", Variants: []*VariantInfo{
		{Name: "A", Tag: 0, Fields: []Field{{Name: "k", Type: Int}, {Name: "n", Type: Int}}},
		{Name: "B", Tag: 1, Fields: []Field{{Name: "n", Type: Int}}},
		{Name: "C", Tag: 2},
	}})
	r.AddStruct(&StructInfo{Name: "P", Fields: []Field{{Name: "x", Type: Int}}})

	if len(r.Order) != 2 || r.Order[0] != "E" || r.Order[1] != "P" {
		t.Errorf("order = %v", r.Order)
	}
	e := r.Enum(TEnum{Name: "E"})
	if e == nil || e.PayloadSize() != 2 || e.Variant("B").FieldIndex("n") != 0 {
		t.Fatalf("enum info not found or wrong shape")
	}
	if _, ok := e.SharedField("n"); ok {
		t.Errorf("n is missing from C, so it is not shared")
	}
	if r.Struct(TStruct{Name: "P"}).FieldIndex("x") != 0 || r.Struct(Int) != nil {
		t.Errorf("struct lookup")
	}
}
