// Package vm executes the bytecode the compiler package emits: a
// register-free, stack-based dispatch loop operating on registry.Function
// instruction streams, against the shared values package's dynamic value
// model.
package vm

import (
	"io"
	"os"
	"sync"

	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// Limits bounds pathological programs the way php.ini's xdebug.max_nesting_level
// and memory_limit do, configurable by the embedding host.
type Limits struct {
	MaxCallDepth int
	MaxStack     int
}

// DefaultLimits mirrors PHP's common nesting guard (512 is xdebug 3's
// max_nesting_level default; this rewrite is unconditional, not
// xdebug-gated). MaxStack bounds each frame's operand stack.
var DefaultLimits = Limits{MaxCallDepth: 512, MaxStack: 4096}

// VM is one execution environment: a symbol registry, the global variable
// table, the output destination, and the object/identity bookkeeping that
// spans an entire run.
type VM struct {
	Registry *registry.Registry
	Output   *OutputBufferStack
	Limits   Limits

	globalsMu sync.RWMutex
	globals   map[string]*values.Value

	calls *CallStackManager

	// statics holds `static $x = ...` storage, one slot map per function,
	// persisting across calls for the lifetime of the VM (spec.md §4.2).
	staticsMu sync.Mutex
	statics   map[*registry.Function]map[uint32]*values.Value

	nextObjectID int64
	objMu        sync.Mutex
}

// New builds a VM writing program output to w (os.Stdout when nil).
func New(reg *registry.Registry, w io.Writer) *VM {
	if w == nil {
		w = os.Stdout
	}
	return &VM{
		Registry: reg,
		Output:   NewOutputBufferStack(w),
		Limits:   DefaultLimits,
		globals:  make(map[string]*values.Value),
		calls:    NewCallStackManager(),
		statics:  make(map[*registry.Function]map[uint32]*values.Value),
	}
}

func (vm *VM) nextObjID() int64 {
	vm.objMu.Lock()
	defer vm.objMu.Unlock()
	vm.nextObjectID++
	return vm.nextObjectID
}

// GetGlobal/SetGlobal implement registry.BuiltinCallContext.
func (vm *VM) GetGlobal(name string) (*values.Value, bool) {
	vm.globalsMu.RLock()
	defer vm.globalsMu.RUnlock()
	v, ok := vm.globals[name]
	return v, ok
}

func (vm *VM) SetGlobal(name string, val *values.Value) {
	vm.globalsMu.Lock()
	vm.globals[name] = val
	vm.globalsMu.Unlock()
	vm.calls.UpdateGlobalBindings([]string{name}, val)
}

func (vm *VM) SymbolRegistry() *registry.Registry { return vm.Registry }

func (vm *VM) WriteOutput(val *values.Value) error {
	_, err := vm.Output.Write([]byte(val.ToString()))
	return err
}

func (vm *VM) Halt(exitCode int, message string) error {
	return &haltSignal{code: exitCode, message: message}
}

// OBStart pushes a new output buffer, mirroring ob_start().
func (vm *VM) OBStart(handler string, chunkSize int, flags int) bool {
	return vm.Output.Start(handler, chunkSize, flags)
}

// OBGetContents mirrors ob_get_contents(): the active buffer's contents, or
// ok=false when no buffer is open (PHP returns false in that case).
func (vm *VM) OBGetContents() (string, bool) {
	if vm.Output.GetLevel() == 0 {
		return "", false
	}
	return vm.Output.GetContents(), true
}

// OBGetClean mirrors ob_get_clean(): returns and removes the active buffer.
func (vm *VM) OBGetClean() (string, bool) { return vm.Output.GetClean() }

// OBClean mirrors ob_clean(): erases the active buffer in place.
func (vm *VM) OBClean() bool { return vm.Output.Clean() }

// OBEndClean mirrors ob_end_clean(): discards and removes the active buffer.
func (vm *VM) OBEndClean() bool { return vm.Output.EndClean() }

// OBFlush mirrors ob_flush(): sends the active buffer to its parent/base
// writer without removing it from the stack.
func (vm *VM) OBFlush() bool { return vm.Output.Flush() }

// OBEndFlush mirrors ob_end_flush(): flushes and removes the active buffer.
func (vm *VM) OBEndFlush() bool { return vm.Output.EndFlush() }

// OBGetLevel mirrors ob_get_level(): the current buffer nesting depth.
func (vm *VM) OBGetLevel() int { return vm.Output.GetLevel() }

// haltSignal unwinds the dispatch loop for exit()/die() without being a
// catchable PHPException.
type haltSignal struct {
	code    int
	message string
}

func (h *haltSignal) Error() string { return h.message }

// staticSlot returns fn's persistent storage for local slot, initializing
// it to def on first encounter.
func (vm *VM) staticSlot(fn *registry.Function, slot uint32, def *values.Value) *values.Value {
	vm.staticsMu.Lock()
	defer vm.staticsMu.Unlock()
	m, ok := vm.statics[fn]
	if !ok {
		m = make(map[uint32]*values.Value)
		vm.statics[fn] = m
	}
	if v, ok := m[slot]; ok {
		return v
	}
	v := def.Deref()
	cell := &values.Value{}
	*cell = *v
	m[slot] = cell
	return cell
}

// Run executes an already compiled top-level {main} function: the entry
// point the cmd package calls after compilation.
func (vm *VM) Run(main *registry.Function) (*values.Value, error) {
	return vm.Call(main, nil, nil, "", "")
}
