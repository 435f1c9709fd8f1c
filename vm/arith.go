package vm

import (
	"math"

	"github.com/leocavalcante/vhp/values"
)

// arithAdd special-cases array union (spec.md: `$a + $b` on two arrays is
// union, not numeric addition) before falling back to numeric +.
func arithAdd(a, b *values.Value) *values.Value {
	if a.Deref().IsArray() && b.Deref().IsArray() {
		return values.NewArrayValue(a.Deref().AsArray().Merge(b.Deref().AsArray()))
	}
	return arithBinary(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

// arithBinary applies intOp when both operands are int-valued, promoting to
// floatOp otherwise (PHP's usual arithmetic conversion).
func arithBinary(a, b *values.Value, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) *values.Value {
	if a.Deref().IsInt() && b.Deref().IsInt() {
		return values.NewInt(intOp(a.ToInt(), b.ToInt()))
	}
	return values.NewFloat(floatOp(a.ToFloat(), b.ToFloat()))
}

func arithDiv(a, b *values.Value) (*values.Value, error) {
	if b.ToFloat() == 0 {
		return nil, &VMError{Type: ErrDivisionByZero, Message: "Division by zero"}
	}
	if a.Deref().IsInt() && b.Deref().IsInt() {
		x, y := a.ToInt(), b.ToInt()
		if x%y == 0 {
			return values.NewInt(x / y), nil
		}
	}
	return values.NewFloat(a.ToFloat() / b.ToFloat()), nil
}

func arithMod(a, b *values.Value) (*values.Value, error) {
	y := b.ToInt()
	if y == 0 {
		return nil, &VMError{Type: ErrModuloByZero, Message: "Modulo by zero"}
	}
	return values.NewInt(a.ToInt() % y), nil
}

func arithPow(a, b *values.Value) *values.Value {
	if a.Deref().IsInt() && b.Deref().IsInt() && b.ToInt() >= 0 {
		base, exp := a.ToInt(), b.ToInt()
		result := int64(1)
		overflow := false
		for i := int64(0); i < exp; i++ {
			next := result * base
			if base != 0 && next/base != result {
				overflow = true
				break
			}
			result = next
		}
		if !overflow {
			return values.NewInt(result)
		}
	}
	return values.NewFloat(math.Pow(a.ToFloat(), b.ToFloat()))
}

func arithUnaryPlus(a *values.Value) *values.Value {
	if a.Deref().IsInt() {
		return values.NewInt(a.ToInt())
	}
	return values.NewFloat(a.ToFloat())
}

func arithUnaryMinus(a *values.Value) *values.Value {
	if a.Deref().IsInt() {
		return values.NewInt(-a.ToInt())
	}
	return values.NewFloat(-a.ToFloat())
}
