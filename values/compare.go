package values

import "math"

// Identical implements === : same type, and for scalars the same bit
// pattern except that NaN is never identical to anything including itself
// (spec.md §8 universal invariant).
func (v *Value) Identical(other *Value) bool {
	a, b := v.Deref(), other.Deref()
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNull:
		return true
	case TypeBool:
		return a.data.(bool) == b.data.(bool)
	case TypeInt:
		return a.data.(int64) == b.data.(int64)
	case TypeFloat:
		af, bf := a.data.(float64), b.data.(float64)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false
		}
		return af == bf
	case TypeString:
		return a.data.(string) == b.data.(string)
	case TypeArray:
		return a.AsArray().identical(b.AsArray())
	case TypeObject:
		return a.AsObject().ID() == b.AsObject().ID()
	case TypeClosure:
		return a.data.(*Closure) == b.data.(*Closure)
	case TypeEnumCase:
		ea, eb := a.AsEnumCase(), b.AsEnumCase()
		return ea.EnumName == eb.EnumName && ea.Name == eb.Name
	case TypeGenerator:
		return a.data.(*Generator) == b.data.(*Generator)
	case TypeFiber:
		return a.data.(*Fiber) == b.data.(*Fiber)
	default:
		return false
	}
}

func (a *Array) identical(b *Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, k := range a.order {
		if i >= len(b.order) || b.order[i] != k {
			return false
		}
		if !a.values[i].Identical(b.values[i]) {
			return false
		}
	}
	return true
}

// Equal implements == with PHP's coercion rules (spec.md §4.4).
func (v *Value) Equal(other *Value) bool {
	a, b := v.Deref(), other.Deref()

	if a.Type == b.Type {
		switch a.Type {
		case TypeArray:
			return a.AsArray().equal(b.AsArray())
		case TypeObject:
			return a.AsObject().equalTo(b.AsObject())
		default:
			return a.Identical(b)
		}
	}

	if a.Type == TypeNull || b.Type == TypeNull {
		return a.ToBool() == false && b.ToBool() == false && a.Type == TypeNull && b.Type == TypeNull ||
			(a.Type == TypeNull && !b.ToBool() && isEmptyish(b)) ||
			(b.Type == TypeNull && !a.ToBool() && isEmptyish(a))
	}

	if a.Type == TypeBool || b.Type == TypeBool {
		return a.ToBool() == b.ToBool()
	}

	if a.IsNumeric() && b.IsNumeric() {
		return a.ToFloat() == b.ToFloat()
	}

	if (a.Type == TypeString && a.IsNumericString() && b.IsNumeric()) ||
		(b.Type == TypeString && b.IsNumericString() && a.IsNumeric()) {
		return a.ToFloat() == b.ToFloat()
	}

	if a.Type == TypeString && b.Type == TypeString {
		return a.data.(string) == b.data.(string)
	}

	return false
}

// isEmptyish decides null == X when X isn't itself null (PHP: null == false
// is true, null == 0 is true, null == "" is true, null == [] is true, but
// null == "0" is false: null compares to a string as "", and "" != "0").
// It mirrors !ToBool except for the string "0".
func isEmptyish(v *Value) bool {
	if v.Type == TypeString && v.data.(string) == "0" {
		return false
	}
	return !v.ToBool()
}

func (a *Array) equal(b *Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, k := range a.order {
		bv := b.Get(k)
		if !b.Has(k) {
			return false
		}
		if !a.values[i].Equal(bv) {
			return false
		}
	}
	return true
}

func (o *Object) equalTo(other *Object) bool {
	if o.ID() == other.ID() {
		return true
	}
	if o.ClassName != other.ClassName {
		return false
	}
	if len(o.Properties) != len(other.Properties) {
		return false
	}
	for k, v := range o.Properties {
		ov, ok := other.Properties[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Compare implements the spaceship operator <=>, returning -1, 0, or 1.
// Ordering follows PHP's loose-comparison rules extended to total order:
// numerics compare numerically, strings compare numerically when both are
// numeric strings and lexically otherwise, arrays compare by length then
// by element. Objects have no ordering of their own: they fall through to
// the numeric comparison, where every object coerces to 1, so two objects
// always compare as 0.
func (v *Value) Compare(other *Value) int {
	a, b := v.Deref(), other.Deref()

	if a.Type == TypeArray && b.Type == TypeArray {
		return a.AsArray().compare(b.AsArray())
	}

	if a.Type == TypeString && b.Type == TypeString {
		as, bs := a.data.(string), b.data.(string)
		if a.IsNumericString() && b.IsNumericString() {
			return compareFloat(a.ToFloat(), b.ToFloat())
		}
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}

	if a.Type == TypeBool || b.Type == TypeBool || a.Type == TypeNull || b.Type == TypeNull {
		ab, bb := a.ToBool(), b.ToBool()
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}

	return compareFloat(a.ToFloat(), b.ToFloat())
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (a *Array) compare(b *Array) int {
	if a.Len() != b.Len() {
		if a.Len() < b.Len() {
			return -1
		}
		return 1
	}
	for i, k := range a.order {
		if !b.Has(k) {
			return 1 // uncomparable in PHP; treat as greater, matching Zend's behavior of returning 1
		}
		if c := a.values[i].Compare(b.Get(k)); c != 0 {
			return c
		}
	}
	return 0
}
