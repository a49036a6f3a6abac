package typesystem

// Field is a named, typed slot of a struct or enum variant.
type Field struct {
	Name string
	Type Type
}

// StructInfo describes a declared struct with its fields in declaration order.
type StructInfo struct {
	Name   string
	Fields []Field
}

// FieldIndex returns the slot of the named field, or -1.
func (s *StructInfo) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// VariantInfo is one enum variant. Tag is its discriminant, the declaration index.
type VariantInfo struct {
	Name   string
	Tag    int
	Fields []Field
}

func (v *VariantInfo) FieldIndex(name string) int {
	for i, f := range v.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// EnumInfo describes a declared enum with its variants in declaration order.
type EnumInfo struct {
	Name     string
	Variants []*VariantInfo
}

func (e *EnumInfo) Variant(name string) *VariantInfo {
	for _, v := range e.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// PayloadSize is the number of payload slots, the field count of the largest variant.
func (e *EnumInfo) PayloadSize() int {
	n := 0
	for _, v := range e.Variants {
		if len(v.Fields) > n {
			n = len(v.Fields)
		}
	}
	return n
}

// SharedField returns the type of a field every variant declares with the
// same type, which makes it accessible on the enum value directly.
func (e *EnumInfo) SharedField(name string) (Type, bool) {
	if len(e.Variants) == 0 {
		return nil, false
	}
	var shared Type
	for _, v := range e.Variants {
		i := v.FieldIndex(name)
		if i < 0 {
			return nil, false
		}
		t := v.Fields[i].Type
		if shared == nil {
			shared = t
			continue
		}
		if !Equal(shared, t) {
			return nil, false
		}
	}
	return shared, true
}

// Registry holds every struct and enum declared in the unit, in declaration order.
type Registry struct {
	Structs map[string]*StructInfo
	Enums   map[string]*EnumInfo
	Order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		Structs: make(map[string]*StructInfo),
		Enums:   make(map[string]*EnumInfo),
	}
}

func (r *Registry) AddStruct(info *StructInfo) {
	if _, ok := r.Structs[info.Name]; !ok {
		r.Order = append(r.Order, info.Name)
	}
	r.Structs[info.Name] = info
}

func (r *Registry) AddEnum(info *EnumInfo) {
	if _, ok := r.Enums[info.Name]; !ok {
		r.Order = append(r.Order, info.Name)
	}
	r.Enums[info.Name] = info
}

// Struct returns the info for a struct type, or nil.
func (r *Registry) Struct(t Type) *StructInfo {
	if st, ok := t.(TStruct); ok && r != nil {
		return r.Structs[st.Name]
	}
	return nil
}

// Enum returns the info for an enum type, or nil.
func (r *Registry) Enum(t Type) *EnumInfo {
	if et, ok := t.(TEnum); ok && r != nil {
		return r.Enums[et.Name]
	}
	return nil
}
