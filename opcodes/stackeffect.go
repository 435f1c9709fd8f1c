package opcodes

// Effect describes how many operand-stack slots an instruction consumes and
// produces. Variable reports instructions whose effect depends on a runtime
// operand (argument count, array element count) and so cannot be checked
// statically; the compiler emits those with an explicit count carried in
// Instruction.Op2 instead.
type Effect struct {
	Pops     int
	Pushes   int
	Variable bool
}

// stackEffects records each opcode's operand-stack effect, read through
// StackEffect. The compiler does not consult it: no pass folds these
// effects over a function's blocks, so stack balance is not verified at
// compile time. Opcodes not listed default to Effect{0, 0, false} — true
// for the DECLARE_*/BIND_* housekeeping ops, which communicate through
// local slots and the class/function tables rather than the operand stack.
var stackEffects = map[Opcode]Effect{
	OP_ADD: {2, 1, false},
	OP_SUB: {2, 1, false},
	OP_MUL: {2, 1, false},
	OP_DIV: {2, 1, false},
	OP_MOD: {2, 1, false},
	OP_POW: {2, 1, false},

	OP_PLUS:   {1, 1, false},
	OP_MINUS:  {1, 1, false},
	OP_NOT:    {1, 1, false},
	OP_BW_NOT: {1, 1, false},

	OP_PRE_INC:  {0, 1, false}, // Op1 names the variable's slot; pushes the new value
	OP_PRE_DEC:  {0, 1, false},
	OP_POST_INC: {0, 1, false}, // pushes the old value
	OP_POST_DEC: {0, 1, false},

	OP_BW_AND: {2, 1, false},
	OP_BW_OR:  {2, 1, false},
	OP_BW_XOR: {2, 1, false},
	OP_SL:     {2, 1, false},
	OP_SR:     {2, 1, false},

	OP_IS_EQUAL:            {2, 1, false},
	OP_IS_NOT_EQUAL:        {2, 1, false},
	OP_IS_IDENTICAL:        {2, 1, false},
	OP_IS_NOT_IDENTICAL:    {2, 1, false},
	OP_IS_SMALLER:          {2, 1, false},
	OP_IS_SMALLER_OR_EQUAL: {2, 1, false},
	OP_IS_GREATER:          {2, 1, false},
	OP_IS_GREATER_OR_EQUAL: {2, 1, false},
	OP_SPACESHIP: {2, 1, false},
	OP_INSTANCEOF: {1, 1, false}, // Op1 names the class being tested against; only the value is on the stack

	OP_BOOLEAN_AND: {2, 1, false},
	OP_BOOLEAN_OR:  {2, 1, false},
	OP_LOGICAL_AND: {2, 1, false},
	OP_LOGICAL_OR:  {2, 1, false},
	OP_LOGICAL_XOR: {2, 1, false},

	OP_JMP:      {0, 0, false},
	OP_JMPZ:     {1, 0, false},
	OP_JMPNZ:    {1, 0, false},
	OP_JMPZ_EX:  {1, 1, false}, // leaves the tested value on the stack (&&/|| short-circuit result)
	OP_JMPNZ_EX: {1, 1, false},

	OP_THROW: {1, 0, false},

	OP_CAST: {1, 1, false},
	OP_BOOL: {1, 1, false},

	OP_ASSIGN:     {1, 1, false}, // pops value, stores into Op1's slot, pushes it back (assignment is an expression)
	OP_ASSIGN_OP:  {2, 1, false},
	OP_ASSIGN_REF: {0, 0, false}, // Op1/Op2 name the target/source slots directly; no stack traffic
	OP_QM_ASSIGN:  {1, 1, false},

	OP_FETCH_R:             {0, 1, false}, // pushes the local slot Op1's value
	OP_FETCH_DIM_R:         {2, 1, false},
	OP_FETCH_OBJ_R:         {1, 1, false},
	OP_ASSIGN_DIM:          {0, 1, true}, // array, [key], value -> value; key is present only when Op2 (hasKey) is 1
	OP_ASSIGN_OBJ:          {2, 1, false}, // object, value -> value (Op1 carries the property name index)
	OP_FETCH_CLASS_CONSTANT: {0, 1, false}, // Op1 names "Class::CONST"
	OP_FETCH_STATIC_PROP_R:  {0, 1, false}, // Op1 names "Class::$prop"
	OP_ASSIGN_STATIC_PROP:   {1, 1, false}, // value -> value (Op1 names "Class::$prop")
	OP_ISSET_ISEMPTY_VAR:    {0, 1, false}, // pushes a bool for local slot Op1

	OP_PUSH_CONST: {0, 1, false},
	OP_POP:        {1, 0, false},
	OP_DUP:        {1, 2, false},

	OP_SEND_VAL:        {1, 0, false},
	OP_SEND_VAR:        {1, 0, false},
	OP_SEND_VAR_EX:     {1, 0, false},
	OP_SEND_VAR_NO_REF: {1, 0, false},
	OP_SEND_REF:        {1, 0, false},

	OP_RETURN:           {1, 0, false},
	OP_RETURN_BY_REF:    {1, 0, false},
	OP_GENERATOR_RETURN: {1, 0, false},
	OP_YIELD:            {1, 1, true}, // [key], value -> sent value; the key is present only when Op1 is 1
	OP_YIELD_FROM:       {1, 1, false},

	OP_INIT_ARRAY:        {0, 1, false},
	OP_ADD_ARRAY_ELEMENT: {1, 0, true}, // key/value count depends on the literal

	OP_CONCAT:      {2, 1, false},
	OP_FAST_CONCAT: {2, 1, false},
	OP_STRLEN:      {1, 1, false},

	OP_NEW:   {0, 1, true}, // constructor arity is runtime-determined
	OP_CLONE: {1, 1, false},

	OP_METHOD_CALL:        {1, 1, true},
	OP_STATIC_METHOD_CALL: {0, 1, true},
	OP_DO_FCALL:           {0, 1, true},
	OP_DO_ICALL:           {0, 1, true},
	OP_DO_UCALL:           {0, 1, true},
	OP_DO_FCALL_BY_NAME:   {0, 1, true},

	OP_ECHO:  {1, 0, false},
	OP_PRINT: {1, 1, false},

	OP_COALESCE: {2, 1, false},
	OP_MATCH:    {1, 1, true}, // condition plus N arm comparisons, folds to 1 result

	OP_CREATE_CLOSURE: {0, 1, true}, // use-list size is runtime-determined
	OP_ARROW_CAPTURE:  {1, 0, false}, // pops the fetched value into the pending capture list
	OP_INVOKE_CLOSURE: {1, 1, true},

	OP_FIBER_START:      {1, 1, true},
	OP_FIBER_RESUME:     {2, 1, false},
	OP_FIBER_SUSPEND:    {1, 1, false},
	OP_FIBER_GET_RETURN: {1, 1, false},

	OP_CLONE_WITH:      {1, 1, true}, // override-list size is runtime-determined
	OP_MATCH_FAIL:      {1, 0, false},
	OP_COALESCE_ASSIGN: {1, 1, false},
	OP_PIPE:            {2, 1, false},

	OP_FE_RESET:     {1, 0, false}, // pops the iterable, stashes iterator state in Op1's slot
	OP_FE_FETCH:     {0, 0, false}, // writes the next value into Result's slot; jumps to Op2 when exhausted
	OP_FE_FETCH_KEY: {0, 0, false}, // writes the current key into Result's slot
}

// StackEffect reports the net operand-stack effect of op. The second return
// value is false when the effect depends on a runtime operand count (e.g.
// argument lists, array literals) — callers must read that count from the
// instruction itself rather than relying on a fixed table entry.
func StackEffect(op Opcode) (eff Effect, ok bool) {
	e, found := stackEffects[op]
	if !found {
		return Effect{}, true
	}
	return e, !e.Variable
}
