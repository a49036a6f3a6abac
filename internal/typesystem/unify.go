package typesystem

// Equal reports whether two types are identical: nominal for structs and
// enums, structural for functions.
func Equal(t1, t2 Type) bool {
	switch a := t1.(type) {
	case TCon:
		b, ok := t2.(TCon)
		return ok && a.Name == b.Name
	case TStruct:
		b, ok := t2.(TStruct)
		return ok && a.Name == b.Name
	case TEnum:
		b, ok := t2.(TEnum)
		return ok && a.Name == b.Name
	case TFunc:
		b, ok := t2.(TFunc)
		if !ok || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.ReturnType, b.ReturnType)
	case TNever:
		_, ok := t2.(TNever)
		return ok
	case TError:
		_, ok := t2.(TError)
		return ok
	}
	return false
}

// Compatible reports whether a value of type actual may be used where
// expected is required. Never and Error are compatible with everything;
// otherwise the types must be equal, with no implicit widening.
func Compatible(expected, actual Type) bool {
	if IsError(expected) || IsError(actual) || IsNever(actual) || IsNever(expected) {
		return true
	}
	a, aok := actual.(TFunc)
	e, eok := expected.(TFunc)
	if aok && eok {
		if len(a.Params) != len(e.Params) {
			return false
		}
		for i := range a.Params {
			if !Compatible(e.Params[i], a.Params[i]) {
				return false
			}
		}
		return Compatible(e.ReturnType, a.ReturnType)
	}
	return Equal(expected, actual)
}

// Unify joins the types of two branches. Never yields to the other side and
// Error absorbs everything. ok is false when the types differ.
func Unify(t1, t2 Type) (Type, bool) {
	switch {
	case IsError(t1) || IsError(t2):
		return Error, true
	case IsNever(t1):
		return t2, true
	case IsNever(t2):
		return t1, true
	case Compatible(t1, t2):
		return t1, true
	}
	return Error, false
}
