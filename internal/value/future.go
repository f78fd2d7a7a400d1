package value

// Suspended is implemented by the VM's call frame so that generator, stream, and
// future values can hold a suspended computation without this package importing
// the vm package (which imports value).
type Suspended interface {
	// Resume continues the suspended computation and reports whether it
	// completed, the resulting value (if completed or yielded), and an error.
	Resume(input Value) (result Value, done bool, err error)
	// Close drops the suspended frame. The VM's frame runs no destructor
	// protocols for locals still live at the suspension point.
	Close() error
}

// FutureState is the status of an async computation (spec.md §3, §4.6).
type FutureState uint8

const (
	FuturePending FutureState = iota
	FutureReady
)

// Future is the value returned by calling an async function (spec.md §4.6).
type Future struct {
	base
	State  FutureState
	Result Value
	Err    error
	frame  Suspended
}

func NewFuture(frame Suspended) Value {
	return Value{kind: KindFuture, ptr: &Future{base: newBase(), frame: frame}}
}

func (v Value) Future() *Future { p, _ := v.ptr.(*Future); return p }

// Poll drives the future one step forward. The host scheduler calls this
// repeatedly (spec.md §4.6 "a scheduler ... polls futures").
func (f *Future) Poll() error {
	if f.State == FutureReady {
		return nil
	}

	result, done, err := f.frame.Resume(Unit)
	if err != nil {
		f.State = FutureReady
		f.Err = err

		return err
	}

	if done {
		f.State = FutureReady
		f.Result = result
	}

	return nil
}

// Close cancels the future, releasing its suspended frame (spec.md §5
// "Cancellation").
func (f *Future) Close() error {
	if f.State == FutureReady {
		return nil
	}

	return f.frame.Close()
}

// Generator is a resumable computation created by calling a function containing
// `yield` (spec.md §3, §4.6).
type Generator struct {
	base
	Done  bool
	frame Suspended
}

func NewGenerator(frame Suspended) Value {
	return Value{kind: KindGenerator, ptr: &Generator{base: newBase(), frame: frame}}
}

func (v Value) Generator() *Generator { p, _ := v.ptr.(*Generator); return p }

// Resume continues the generator, returning Some(value) for each yield and
// None once the generator's body runs to completion.
func (g *Generator) Resume(input Value) (Value, error) {
	if g.Done {
		return None(), nil
	}

	result, done, err := g.frame.Resume(input)
	if err != nil {
		g.Done = true
		return Value{}, err
	}

	if done {
		g.Done = true
		return None(), nil
	}

	return Some(result), nil
}

func (g *Generator) Close() error {
	if g.Done {
		return nil
	}

	g.Done = true

	return g.frame.Close()
}

// Stream is an asynchronous generator: each step suspends on `yield`; an `await`
// inside it is driven to completion within the step and does not suspend it.
type Stream struct {
	Generator
}

func NewStream(frame Suspended) Value {
	return Value{kind: KindStream, ptr: &Stream{Generator{base: newBase(), frame: frame}}}
}

func (v Value) Stream() *Stream { p, _ := v.ptr.(*Stream); return p }
