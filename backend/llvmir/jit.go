package llvmir

import (
	"fmt"
	"io"

	"github.com/informatter/solidlang/backend"
)

// jitSession stands in for the original's ORC JIT (spec.md §4.5): rather
// than binding against LLVM's C API, each "submission" is kept as
// optimized IR text, and a lookup synthesizes a tiny `main` that calls
// the requested function and runs the whole thing through `lli` — which
// itself JIT-compiles and executes the IR. Module rotation (spec.md
// §4.6) is modeled by keeping submissions in a list that Remove() can
// delete from, the same "drop this translation unit's definitions"
// effect the original gets from its ResourceTracker.
type jitSession struct {
	tc           *toolchain
	modules      []jitModule
	nextID       int
	nativeOutput io.Writer
}

type jitModule struct {
	id   int
	text string
}

func newJITSession(tc *toolchain, nativeOutput io.Writer) *jitSession {
	return &jitSession{tc: tc, nativeOutput: nativeOutput}
}

func (j *jitSession) submit(irText string) (backend.ResourceTracker, error) {
	j.nextID++
	j.modules = append(j.modules, jitModule{id: j.nextID, text: irText})
	return &moduleHandle{session: j, id: j.nextID}, nil
}

type moduleHandle struct {
	session *jitSession
	id      int
}

func (h *moduleHandle) Remove() error {
	for i, m := range h.session.modules {
		if m.id == h.id {
			h.session.modules = append(h.session.modules[:i], h.session.modules[i+1:]...)
			return nil
		}
	}
	return nil
}

// lookup only supports the zero-argument case: the sole function the
// driver ever invokes directly is the wrapper spec.md §4.2 builds around
// a bare top-level expression. Every other call happens from inside
// SolidLang code, as an ast.Call node the IR generator resolves itself.
func (j *jitSession) lookup(name string, arity int) (backend.FuncPtr, error) {
	if arity != 0 {
		return nil, fmt.Errorf("💥 backend error: JIT invocation is only supported for zero-argument functions, got arity %d for %q", arity, name)
	}
	texts := make([]string, len(j.modules))
	for i, m := range j.modules {
		texts[i] = m.text
	}
	fn := func() (float64, error) {
		return j.tc.invokeMain(texts, name, j.nativeOutput)
	}
	return backend.FuncPtr(fn), nil
}
