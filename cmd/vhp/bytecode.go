package main

import (
	"fmt"
	"io"

	"github.com/leocavalcante/vhp/builtins"
	"github.com/leocavalcante/vhp/compiler"
	"github.com/leocavalcante/vhp/registry"
)

// dumpBytecode compiles one demo and writes its {main} function's
// instruction listing to out — one line per Instruction, in the
// Opcode/Op1/Op2/Result shape this compiler actually emits (unlike
// opcodes.Instruction.String(), which still decodes the teacher's retired
// OpType1/OpType2 tagged-operand bytes and would mislabel every operand).
func dumpBytecode(name string, out io.Writer) error {
	build, ok := demos[name]
	if !ok {
		return fmt.Errorf("no such demo %q (see `vhp demos`)", name)
	}

	reg := registry.New()
	builtins.Register(reg)
	c := compiler.New(reg)
	main, err := c.Compile(build())
	if err != nil {
		return err
	}

	for i, inst := range main.Instructions {
		fmt.Fprintf(out, "%4d  %-20s op1=%-6d op2=%-6d result=%d\n",
			i, inst.Opcode.String(), inst.Op1, inst.Op2, inst.Result)
	}
	return nil
}
