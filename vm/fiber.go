package vm

import (
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// fiberState is Fiber's coroutine half, symmetric to generatorState: start()
// spawns the body goroutine, suspend()/resume() hand control back and forth
// across a pair of unbuffered channels so exactly one side runs at a time
// (spec.md §5 "fibers cooperatively transfer control between two frames").
type fiberState struct {
	vm    *VM
	fn    *registry.Function
	frame *CallFrame

	toFiber   chan []*values.Value
	fromFiber chan fiberMsg

	running  bool
	finished bool
}

type fiberMsg struct {
	suspended *values.Value
	done      bool
	ret       *values.Value
	err       error
}

func newFiberState(vm *VM, fn *registry.Function, frame *CallFrame) *fiberState {
	return &fiberState{
		vm:        vm,
		fn:        fn,
		frame:     frame,
		toFiber:   make(chan []*values.Value),
		fromFiber: make(chan fiberMsg),
	}
}

func (fs *fiberState) run() {
	args := <-fs.toFiber
	for i, a := range args {
		if i < len(fs.frame.Locals) {
			fs.frame.setLocal(uint32(i), a)
		}
	}
	ret, err := fs.vm.executeFrame(fs.frame, nil, fs)
	fs.fromFiber <- fiberMsg{done: true, ret: ret, err: err}
}

// start launches the fiber body with the given constructor-call arguments,
// blocking until it either suspends or finishes.
func (fs *fiberState) start(args []*values.Value) fiberMsg {
	fs.running = true
	go fs.run()
	fs.toFiber <- args
	msg := <-fs.fromFiber
	fs.running = false
	if msg.done {
		fs.finished = true
	}
	return msg
}

// resume hands sendVal back to a suspended fiber body (the value
// Fiber::suspend() returns as an expression) and blocks until the next
// suspend or completion.
func (fs *fiberState) resume(sendVal *values.Value) fiberMsg {
	fs.running = true
	fs.toFiber <- []*values.Value{sendVal}
	msg := <-fs.fromFiber
	fs.running = false
	if msg.done {
		fs.finished = true
	}
	return msg
}

// suspend is OP_FIBER_SUSPEND's runtime half, called from inside the fiber
// body's own goroutine: hand the suspended value out to whoever resumes us,
// then block until resume() sends a value back in.
func (st *execState) suspend(val *values.Value) (*values.Value, error) {
	if st.fiber == nil {
		return nil, Throw(st.vm.newThrowable("RuntimeException", "Fiber::suspend() outside a fiber"))
	}
	st.fiber.fromFiber <- fiberMsg{suspended: val}
	args := <-st.fiber.toFiber
	if len(args) == 0 || args[0] == nil {
		return values.NewNull(), nil
	}
	return args[0], nil
}

// startFiber builds a Fiber value bound to fn's not-yet-running call frame.
func (vm *VM) startFiber(fn *registry.Function, frame *CallFrame) *values.Value {
	fs := newFiberState(vm, fn, frame)
	f := values.NewFiber()
	f.Suspended = fs
	return values.NewFiberValue(f)
}
