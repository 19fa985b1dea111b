// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import "fmt"

// Erased represents a type-erased value threaded through the trampoline.
// Concrete types are recovered via type assertions at node boundaries,
// the same defunctionalization technique used throughout this package.
type Erased = any

// node is the defunctionalized instruction tree. It is unexported and
// closed: the constructors in this file are the only implementations
// that will ever exist, so dispatch in loop.go can safely type-switch
// over them instead of going through an open handler interface.
type node interface{ node() }

// Effect[A] is a suspended or completed computation that, when
// interpreted, produces either a value of type A or an error.
//
// Effect values are immutable and may be shared and reused freely;
// interpreting one (via Start, StartCancelable, or Step) never mutates
// it.
type Effect[A any] struct {
	n node
}

// ---- Pure ----

type pureNode struct{ v Erased }

func (pureNode) node() {}

// Pure lifts a plain value into an already-completed Effect.
func Pure[A any](a A) Effect[A] {
	return Effect[A]{n: pureNode{v: a}}
}

// ---- RaiseError ----

type raiseErrorNode struct{ err error }

func (raiseErrorNode) node() {}

// RaiseError produces an Effect that fails immediately with err when
// interpreted. A nil err is replaced with ErrNilEffect, matching the
// run-loop's convention that every RaiseError carries a non-nil cause.
func RaiseError[A any](err error) Effect[A] {
	if err == nil {
		err = ErrNilEffect
	}
	return Effect[A]{n: raiseErrorNode{err: err}}
}

// ---- Lazy ----

type lazyNode struct{ f func() Erased }

func (lazyNode) node() {}

// Lazy defers a pure computation until the run-loop reaches it. f is
// called at most once, on the goroutine driving interpretation.
func Lazy[A any](f func() A) Effect[A] {
	return Effect[A]{n: lazyNode{f: func() Erased { return f() }}}
}

// ---- Defer ----

type deferNode struct{ f func() node }

func (deferNode) node() {}

// Defer postpones construction of the next Effect until the run-loop
// reaches it. Unlike Lazy, f returns a whole Effect, so Defer is the
// usual way to express recursive or conditionally-constructed chains
// without building the full tree up front.
func Defer[A any](f func() Effect[A]) Effect[A] {
	return Effect[A]{n: deferNode{f: func() node { return f().n }}}
}

// ---- Map ----

type mapNode struct {
	src node
	f   func(Erased) Erased
}

func (mapNode) node() {}

// Map transforms the result of src with f once src completes
// successfully. Errors in src propagate unchanged; f is never called.
func Map[A, B any](src Effect[A], f func(A) B) Effect[B] {
	return Effect[B]{n: mapNode{src: src.n, f: func(v Erased) Erased { return f(v.(A)) }}}
}

// ---- FlatMap ----

type flatMapNode struct {
	src node
	f   func(Erased) node
}

func (flatMapNode) node() {}

// FlatMap sequences src with a continuation f that produces the next
// Effect from src's result. This is the primitive bind operation; the
// run-loop's call stack exists to make long FlatMap chains stack-safe.
func FlatMap[A, B any](src Effect[A], f func(A) Effect[B]) Effect[B] {
	return Effect[B]{n: flatMapNode{src: src.n, f: func(v Erased) node { return f(v.(A)).n }}}
}

// ---- Single ----

type singleNode struct {
	register func(resume func(Erased, error))
}

func (singleNode) node() {}

// Single suspends interpretation on a single host-provided callback.
// register is invoked exactly once, synchronously, with a resume
// function that the host must call exactly once (synchronously or
// later, from any goroutine) to continue the run. Only the first call
// to resume takes effect; later calls are ignored (see suspension in
// boundary.go).
func Single[A any](register func(resume func(A, error))) Effect[A] {
	return Effect[A]{n: singleNode{register: func(resume func(Erased, error)) {
		register(func(a A, err error) { resume(a, err) })
	}}}
}

// ---- Async ----

type asyncNode struct {
	register func(resume func(Erased, error))
}

func (asyncNode) node() {}

// Async is Single's sibling: register and resume follow the same rules,
// and resume may likewise be called from any goroutine. The difference
// is where the continuation runs: after an Async resumes, the run-loop
// continues via the run's current ambient Connection (see
// WithConnection, ConnectionSwitch, AsyncContinueOn), while a Single
// continues on whichever goroutine called resume. For both, when the
// Connection is Inline, a resume made synchronously from within
// register continues in the same drive loop without growing the native
// Go stack.
func Async[A any](register func(resume func(A, error))) Effect[A] {
	return Effect[A]{n: asyncNode{register: func(resume func(Erased, error)) {
		register(func(a A, err error) { resume(a, err) })
	}}}
}

// ---- AsyncContinueOn ----

type asyncContinueOnNode struct {
	conn     Connection
	register func(resume func(Erased, error))
}

func (asyncContinueOnNode) node() {}

// AsyncContinueOn behaves like Async, except the continuation after
// resume runs via conn.Execute rather than inline on whichever
// goroutine called resume, and conn becomes the ambient Connection for
// the remainder of the run: unlike ConnectionSwitch, there is no
// implicit restore once this particular suspension completes. Use this
// when a callback arrives on a goroutine that must not run interpreter
// code directly (e.g. an I/O poller), and conn hands it off to the
// right executor from then on.
func AsyncContinueOn[A any](conn Connection, register func(resume func(A, error))) Effect[A] {
	return Effect[A]{n: asyncContinueOnNode{conn: conn, register: func(resume func(Erased, error)) {
		register(func(a A, err error) { resume(a, err) })
	}}}
}

// ---- AsyncContextSwitch ----

type asyncContextSwitchNode struct {
	ctx      Context
	register func(resume func(Erased, error))
	// restore, when true, has the run-loop push a Bind+ErrorHandler
	// pair that re-establishes the old Context once the switched
	// region completes. UpdateContext builds this node directly with
	// restore false, since its replacement is meant to persist.
	restore bool
}

func (asyncContextSwitchNode) node() {}

// AsyncContextSwitch behaves like Async, but additionally replaces the
// ambient Context with ctx while this suspension is outstanding. The
// previous Context is restored as soon as the suspension resumes,
// whether with a value, an error, or ErrCanceled, so continuations
// sequenced after it (for example via FlatMap) observe the previous
// Context.
func AsyncContextSwitch[A any](ctx Context, register func(resume func(A, error))) Effect[A] {
	return Effect[A]{n: asyncContextSwitchNode{ctx: ctx, restore: true, register: func(resume func(Erased, error)) {
		register(func(a A, err error) { resume(a, err) })
	}}}
}

// ---- ConnectionSwitch ----

type connectionSwitchNode struct {
	conn node2conn
	next node
}

// node2conn is a thin indirection so connectionSwitchNode doesn't need
// a type parameter: the Connection to switch to is known statically at
// construction time.
type node2conn struct{ conn Connection }

func (connectionSwitchNode) node() {}

// ConnectionSwitch replaces the current Connection for the remainder
// of next's evaluation, restoring the previous one once next completes
// (successfully, with an error, or via cancellation). Unlike
// AsyncContinueOn, switching the connection here does not by itself
// suspend on a host callback.
func ConnectionSwitch[A any](conn Connection, next Effect[A]) Effect[A] {
	return Effect[A]{n: connectionSwitchNode{conn: node2conn{conn: conn}, next: next.n}}
}

// ---- UpdateContext / ContinueOn (sugar) ----

// UpdateContext replaces the ambient Context for the remainder of the
// run and resumes immediately. It is the synchronous degenerate case
// of AsyncContextSwitch, except the replacement persists rather than
// being restored when the immediate continuation completes — there is
// no scope to restore at the end of, unlike AsyncContextSwitch's
// general form.
func UpdateContext(ctx Context) Effect[struct{}] {
	return Effect[struct{}]{n: asyncContextSwitchNode{ctx: ctx, restore: false, register: func(resume func(Erased, error)) {
		resume(struct{}{}, nil)
	}}}
}

// ContinueOn switches the ambient Connection for the remainder of the
// run and resumes immediately. It is the synchronous degenerate case
// of AsyncContinueOn, and persists the same way.
func ContinueOn(conn Connection) Effect[struct{}] {
	return AsyncContinueOn[struct{}](conn, func(resume func(struct{}, error)) {
		resume(struct{}{}, nil)
	})
}

// ---- ReadContext ----

type readContextNode struct{}

func (readContextNode) node() {}

// ReadContext returns the ambient Context in effect at the point it is
// interpreted. The run-loop answers it directly from its own state, so
// it never suspends.
func ReadContext() Effect[Context] {
	return Effect[Context]{n: readContextNode{}}
}

// ---- handleAlways (internal) ----

// handleAlwaysNode is not part of the public constructor set above: it
// is the one bit of interpreter plumbing the resource-safety
// combinators in resource.go need (Bracket, Ensure) and that the
// closed public ADT has no constructor for, since spec's instruction
// set treats bracket-style combinators as built on top of the
// interpreter rather than inside it. It runs src to completion, then
// calls f exactly once with whatever it produced — a value, or an
// error — and continues with the node f returns either way. This is
// the same Bind+ErrorHandler pairing technique pushRestoreContext and
// pushRestoreConnection use in loop.go, generalized to a caller-
// supplied continuation instead of a fixed restore action.
type handleAlwaysNode struct {
	src node
	f   func(v Erased, err error) node
}

func (handleAlwaysNode) node() {}

// unhandledNode panics with a descriptive message for a node value that
// does not match any of the constructors above. It should be
// unreachable: node is closed and every constructor in this file wraps
// its node in an Effect immediately.
func unhandledNode(n node) {
	panic(fmt.Sprintf("effect: unhandled instruction node (internal error, please report): %T", n))
}
