package vm

import (
	"github.com/leocavalcante/vhp/registry"
	"github.com/leocavalcante/vhp/values"
)

// genMsg is one handoff across the yield/resume channel pair: either a
// yielded key/value pair, or the generator's final return value/error.
type genMsg struct {
	key, value *values.Value
	done       bool
	err        error
}

// generatorState is the suspended-coroutine half of a values.Generator
// handle (spec.md §5: "a generator is a suspended VM frame, not a
// re-entrant call"). Each generator body runs in its own goroutine, blocking
// on toGen between yields so only one of {caller, generator body} ever runs
// at a time — a generator is cooperative, not actually concurrent.
type generatorState struct {
	vm    *VM
	fn    *registry.Function
	frame *CallFrame

	toGen   chan *values.Value
	fromGen chan genMsg

	started  bool
	finished bool

	nextAutoKey int64
	returnValue *values.Value
}

func newGeneratorState(vm *VM, fn *registry.Function, frame *CallFrame) *generatorState {
	return &generatorState{
		vm:      vm,
		fn:      fn,
		frame:   frame,
		toGen:   make(chan *values.Value),
		fromGen: make(chan genMsg),
	}
}

func (gs *generatorState) run() {
	<-gs.toGen // the resume() call that started us
	ret, err := gs.vm.executeFrame(gs.frame, gs, nil)
	gs.fromGen <- genMsg{done: true, value: ret, err: err}
}

// resume sends sendVal into the generator body (the value yield returns as
// an expression) and blocks until it yields again or finishes.
func (gs *generatorState) resume(sendVal *values.Value) genMsg {
	if gs.finished {
		return genMsg{done: true, value: gs.returnValue}
	}
	if !gs.started {
		gs.started = true
		go gs.run()
	}
	gs.toGen <- sendVal
	msg := <-gs.fromGen
	if msg.done {
		gs.finished = true
		gs.returnValue = msg.value
		if gs.returnValue == nil {
			gs.returnValue = values.NewNull()
		}
	}
	return msg
}

// yield suspends the current generator body, handing (key, value) to
// whoever is driving it, and resumes with whatever value Generator::send()
// supplied (null for plain ->next()/->current() advancement).
func (st *execState) yield(key, value *values.Value) (*values.Value, error) {
	if st.gen == nil {
		return nil, &VMError{Type: ErrOpcodeNotImplemented, Message: "yield outside a generator"}
	}
	if key == nil {
		key = values.NewInt(st.gen.nextAutoKey)
		st.gen.nextAutoKey++
	} else if key.Deref().IsInt() && key.ToInt() >= st.gen.nextAutoKey {
		st.gen.nextAutoKey = key.ToInt() + 1
	}
	st.gen.fromGen <- genMsg{key: key, value: value}
	sent := <-st.gen.toGen
	if sent == nil {
		sent = values.NewNull()
	}
	return sent, nil
}

// yieldFrom delegates to an inner array or generator, re-yielding each of
// its elements in turn, then evaluates to the inner generator's own return
// value (or null for an array source, per spec.md §5).
func (st *execState) yieldFrom(source *values.Value) (*values.Value, error) {
	d := source.Deref()
	if d.IsArray() {
		var err error
		d.AsArray().Each(func(k values.ArrayKey, v *values.Value) bool {
			_, err = st.yield(k.ToValue(), v)
			return err == nil
		})
		return values.NewNull(), err
	}
	if d.IsGenerator() {
		inner := d.AsGenerator()
		if !inner.Started && !inner.Finished {
			if err := advanceGenerator(inner, nil); err != nil {
				return nil, err
			}
		}
		for !inner.Finished {
			sent, err := st.yield(inner.CurrentK, inner.Current)
			if err != nil {
				return nil, err
			}
			if err := advanceGenerator(inner, sent); err != nil {
				return nil, err
			}
		}
		gs, _ := inner.Suspended.(*generatorState)
		if gs != nil && gs.returnValue != nil {
			return gs.returnValue, nil
		}
		return values.NewNull(), nil
	}
	return nil, Throw(st.vm.newThrowable("RuntimeException", "yield from requires an array or a generator"))
}

// startGenerator builds and returns a Generator value for fn, to be run
// lazily: the body doesn't execute a single instruction until the caller
// first advances it (spec.md §5), matching PHP's lazy generator semantics.
func (vm *VM) startGenerator(fn *registry.Function, frame *CallFrame) *values.Value {
	gs := newGeneratorState(vm, fn, frame)
	g := values.NewGenerator()
	g.Suspended = gs
	return values.NewGeneratorValue(g)
}

// advanceGenerator drives g forward once (rewind/next/send), updating its
// Current/CurrentK/Finished fields from the underlying generatorState.
func advanceGenerator(g *values.Generator, sendVal *values.Value) error {
	gs, ok := g.Suspended.(*generatorState)
	if !ok {
		return &VMError{Type: ErrOpcodeNotImplemented, Message: "not a VM-backed generator"}
	}
	msg := gs.resume(sendVal)
	if msg.err != nil {
		return msg.err
	}
	if msg.done {
		g.Finished = true
		g.Current = values.NewNull()
		g.CurrentK = values.NewNull()
		return nil
	}
	g.Started = true
	g.Current = msg.value
	g.CurrentK = msg.key
	return nil
}

// drainGenerator eagerly exhausts g, used by foreach-over-generator (`yield
// from` advances its inner generator one step at a time instead) — a
// pragmatic simplification relative to lazy iteration, acceptable since
// generator bodies in this subset are not expected to be infinite without
// an explicit break.
func drainGenerator(g *values.Generator) ([]values.ArrayKey, []*values.Value, error) {
	var keys []values.ArrayKey
	var vals []*values.Value
	if !g.Started {
		if err := advanceGenerator(g, nil); err != nil {
			return nil, nil, err
		}
	}
	for !g.Finished {
		keys = append(keys, values.NormalizeKey(g.CurrentK))
		vals = append(vals, g.Current)
		if err := advanceGenerator(g, nil); err != nil {
			return nil, nil, err
		}
	}
	return keys, vals, nil
}
