package jsontree

// Equal reports whether a and b are the same document, member order included.
func Equal(a, b Value) bool {
	return compare(a, b, true)
}

// SameShape reports whether a and b have the same variant at every position,
// the same keys in the same order and the same array lengths. String contents
// are not compared; all other scalars are.
func SameShape(a, b Value) bool {
	return compare(a, b, false)
}

func compare(a, b Value, withStrings bool) bool {
	a, b = normalize(a), normalize(b)
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case Number:
		return x == b.(Number)
	case String:
		return !withStrings || x == b.(String)
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !compare(x[i], y[i], withStrings) {
				return false
			}
		}
		return true
	case Object:
		y := b.(Object)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i].Key != y[i].Key || !compare(x[i].Value, y[i].Value, withStrings) {
				return false
			}
		}
		return true
	}
	return false
}

func normalize(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// Depth returns the container nesting depth of v. Scalars have depth 0.
func Depth(v Value) int {
	deepest := 0
	switch x := v.(type) {
	case Array:
		for _, el := range x {
			if d := Depth(el); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	case Object:
		for _, m := range x {
			if d := Depth(m.Value); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	}
	return 0
}
