package vm

import (
	"errors"
	"testing"

	"github.com/leocavalcante/vhp/opcodes"
	"github.com/leocavalcante/vhp/values"
)

func TestVMErrorError(t *testing.T) {
	tests := []struct {
		name     string
		vmError  *VMError
		expected string
	}{
		{
			name:     "no message",
			vmError:  &VMError{Type: ErrDivisionByZero, Opcode: opcodes.OP_DIV, IP: 7},
			expected: "division by zero (at OP_DIV:7)",
		},
		{
			name:     "with message",
			vmError:  &VMError{Type: ErrConstantOutOfRange, Message: "index 5, max 3", Opcode: opcodes.OP_PUSH_CONST, IP: 1},
			expected: "constant index out of range: index 5, max 3 (at OP_PUSH_CONST:1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vmError.Error(); got != tt.expected {
				t.Errorf("VMError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestVMErrorUnwrap(t *testing.T) {
	vmErr := &VMError{Type: ErrDivisionByZero, Message: "test"}
	if !errors.Is(vmErr, ErrDivisionByZero) {
		t.Error("errors.Is should unwrap to ErrDivisionByZero")
	}
	if errors.Is(vmErr, ErrModuloByZero) {
		t.Error("errors.Is should not match an unrelated sentinel")
	}
}

func TestThrowWrapsValueAsPHPException(t *testing.T) {
	val := values.NewInt(42)
	err := Throw(val)

	var exc *PHPException
	if !errors.As(err, &exc) {
		t.Fatal("Throw() should produce a *PHPException")
	}
	if exc.Value != val {
		t.Error("PHPException should carry the thrown value unchanged")
	}
}

func TestPHPExceptionErrorMessage(t *testing.T) {
	obj := values.NewObject("RuntimeException")
	obj.Message = "boom"
	err := Throw(values.NewObjectValue(obj))

	if got, want := err.Error(), "uncaught RuntimeException: boom"; got != want {
		t.Errorf("PHPException.Error() = %q, want %q", got, want)
	}
}
