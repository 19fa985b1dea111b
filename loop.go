// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import "sync"

// runState is the mutable state threaded through one run of the
// interpreter: its cancellation Token, its current ambient Context and
// Connection (both replaceable mid-run by AsyncContextSwitch/
// ConnectionSwitch), and a correlation id for logging. It outlives any
// single call into drive, since a run may suspend and resume many
// times across goroutines before it finishes.
type runState struct {
	token   *Token
	ctx     Context
	conn    Connection
	runID   string
	tracer  tracer
	done    func(Erased, error)

	// stepOnce, when true, tells drive to intercept the very next
	// suspension instead of calling the node's own register function:
	// it stashes a resume closure in stepResume and returns, for Step's
	// manual, single-suspension-at-a-time interpretation mode.
	stepOnce   bool
	stepResume func(Erased, error)
}

// drive is the trampolined run-loop. It repeatedly reduces cur (and,
// once cur completes, the call stack) until either the run finishes
// (st.done is called) or it must suspend on a host callback, in which
// case drive returns without having called st.done, and a later
// resume will call drive again (possibly on a different goroutine).
//
// On entry either cur is non-nil and haveResult is false, or cur is nil
// and haveResult is true (the caller already has a value/err to feed
// into the stack, e.g. because a host callback just resumed). A nil cur
// with haveResult false (a zero-value Effect, built without calling a
// constructor) fails the run with ErrNilEffect.
func drive(st *runState, stack *stackFrame, cur node, haveResult bool, val Erased, verr error) {
	for {
		if st.token.IsCanceled() && verr == nil {
			// Cancellation wins over any not-yet-dispatched instruction,
			// and over a value not yet delivered to the stack, but never
			// overwrites an error already in flight.
			st.tracer.canceled()
			verr = ErrCanceled
			haveResult = true
			cur = nil
		}

		if cur != nil {
			st.tracer.dispatch(cur)
			switch n := cur.(type) {
			case pureNode:
				val, verr, cur, haveResult = n.v, nil, nil, true

			case raiseErrorNode:
				val, verr, cur, haveResult = nil, n.err, nil, true

			case lazyNode:
				v, perr := safeCall(n.f)
				val, verr, cur, haveResult = v, perr, nil, true

			case deferNode:
				cur = safeDefer(n.f)

			case mapNode:
				f := n.f
				stack = pushBind(stack, func(v Erased) node { return pureNode{v: f(v)} })
				cur = n.src

			case flatMapNode:
				stack = pushBind(stack, n.f)
				cur = n.src

			case readContextNode:
				val, verr, cur, haveResult = st.ctx, nil, nil, true

			case singleNode:
				st.tracer.suspend("single")
				if ok, v, e := suspendDispatch(st, stack, n.register, nil); ok {
					val, verr, cur, haveResult = v, e, nil, true
					continue
				}
				return

			case asyncNode:
				st.tracer.suspend("async")
				if ok, v, e := suspendDispatch(st, stack, n.register, st.conn); ok {
					val, verr, cur, haveResult = v, e, nil, true
					continue
				}
				return

			case asyncContinueOnNode:
				st.tracer.suspend("async_continue_on")
				// Persists: conn becomes the ambient Connection for the
				// rest of the run, not just this one hop.
				st.conn = n.conn
				if ok, v, e := suspendDispatch(st, stack, n.register, n.conn); ok {
					val, verr, cur, haveResult = v, e, nil, true
					continue
				}
				return

			case asyncContextSwitchNode:
				st.tracer.suspend("async_context_switch")
				oldCtx := st.ctx
				st.ctx = n.ctx
				if n.restore {
					stack = pushRestoreContext(stack, st, oldCtx)
				}
				if ok, v, e := suspendDispatch(st, stack, n.register, st.conn); ok {
					val, verr, cur, haveResult = v, e, nil, true
					continue
				}
				return

			case handleAlwaysNode:
				f := n.f
				stack = pushHandler(stack, func(err error) (node, bool) { return f(nil, err), true })
				stack = pushBind(stack, func(v Erased) node { return f(v, nil) })
				cur = n.src

			case connectionSwitchNode:
				oldConn := st.conn
				st.conn = n.conn.conn
				stack = pushRestoreConnection(stack, st, oldConn)
				cur = n.next

			default:
				unhandledNode(cur)
			}
			continue
		}

		if !haveResult {
			val, verr, haveResult = nil, ErrNilEffect, true
		}

		if verr == nil {
			if stack == nil {
				st.tracer.finish(nil)
				st.done(val, nil)
				return
			}
			fr := stack
			stack = fr.next
			if fr.bind != nil {
				bind := fr.bind
				releaseFrame(fr)
				n2, perr := safeBind(bind, val)
				if perr != nil {
					verr = perr
					haveResult = true
					cur = nil
					continue
				}
				cur = n2
				haveResult = false
				continue
			}
			releaseFrame(fr) // error-handler frames are inert on success
			continue
		}

		if stack == nil {
			st.tracer.finish(verr)
			st.done(nil, verr)
			return
		}
		fr := stack
		stack = fr.next
		if fr.handler != nil {
			handler := fr.handler
			releaseFrame(fr)
			n2, handled, perr := safeHandler(handler, verr)
			if perr != nil {
				verr = perr
				haveResult = true
				cur = nil
				continue
			}
			if handled {
				cur = n2
				verr = nil
				haveResult = false
				continue
			}
			continue // handler observed the error (e.g. restored state) but did not recover it
		}
		releaseFrame(fr) // bind frames are inert while an error propagates
	}
}

// safeCall invokes a Lazy thunk, recovering a panic into an error
// rather than letting it unwind out of drive. This, along with
// safeDefer, safeBind, and safeHandler, and the recover around
// register in suspendOn, are the only places user code runs — every
// one of them converts a non-fatal panic into an in-band error.
func safeCall(f func() Erased) (v Erased, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return f(), nil
}

// safeDefer is safeCall's counterpart for Defer, whose thunk produces a
// node rather than a value: a recovered panic becomes a raiseErrorNode
// instead of an error return, since there is no other way to fail out
// of a function that must always return a node.
func safeDefer(f func() node) (n node) {
	defer func() {
		if r := recover(); r != nil {
			n = raiseErrorNode{err: panicError(r)}
		}
	}()
	return f()
}

// safeBind invokes a Bind frame's continuation (the user function
// supplied to Map or FlatMap, or one of this package's own restore/
// handleAlways continuations), recovering a panic into an error.
func safeBind(bind func(Erased) node, val Erased) (n node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return bind(val), nil
}

// safeHandler is safeBind's counterpart for ErrorHandler frames.
func safeHandler(handler func(error) (node, bool), verr error) (n node, handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	n, handled = handler(verr)
	return n, handled, nil
}

// pushRestoreContext pushes the Bind+ErrorHandler frame pair that
// restores the ambient Context once the computation guarded by an
// AsyncContextSwitch finishes, on every path: success, failure, or
// cancellation (which surfaces here as an ErrCanceled error).
func pushRestoreContext(stack *stackFrame, st *runState, old Context) *stackFrame {
	stack = pushHandler(stack, func(err error) (node, bool) {
		st.ctx = old
		return nil, false
	})
	stack = pushBind(stack, func(v Erased) node {
		st.ctx = old
		return pureNode{v: v}
	})
	return stack
}

// pushRestoreConnection is pushRestoreContext's counterpart for
// ConnectionSwitch.
func pushRestoreConnection(stack *stackFrame, st *runState, old Connection) *stackFrame {
	stack = pushHandler(stack, func(err error) (node, bool) {
		st.conn = old
		return nil, false
	})
	stack = pushBind(stack, func(v Erased) node {
		st.conn = old
		return pureNode{v: v}
	})
	return stack
}

// suspendOn registers with a host callback via register. If the host
// calls resume synchronously, before register returns, and no real
// hand-off Connection is involved, suspendOn reports ok=true with the
// resumed value/error so drive's own loop can continue in place — the
// trampoline hop that keeps long chains of synchronous Async resumes
// stack-safe, since no recursive call into drive is made.
//
// If the host instead calls resume later (from any goroutine), or a
// non-Inline hop must run the continuation, suspendOn starts a fresh,
// independent call to drive from inside the resume callback (or from
// whatever hop.Execute schedules) and reports ok=false: the caller must
// simply return, since the run either isn't finished yet or is already
// being continued elsewhere.
//
// hop is the Connection the continuation must run on; nil or Inline
// means "stay on whichever goroutine called resume".
//
// Before handing register the resume closure, suspendOn pushes a
// finalizer onto st.token: if the token is canceled while this
// suspension is still outstanding, the finalizer fires resume itself
// with ErrCanceled, waking a host callback that would otherwise never
// call back on its own. The finalizer is popped once resume fires for
// any other reason, so a normal completion never leaves a stale
// cancellation hook behind.
func suspendOn(st *runState, stack *stackFrame, register func(func(Erased, error)), hop Connection) (ok bool, val Erased, err error) {
	susp := &suspension{}
	var mu sync.Mutex // guards registering, syncVal, syncErr and gotSync
	registering := true
	var syncVal Erased
	var syncErr error
	gotSync := false

	resume := func(v Erased, err error) {
		if !susp.fire() {
			// Spec: a second resume on the same suspension is a no-op,
			// not a panic — a sloppy host calling back twice must not
			// corrupt a run that has already moved on.
			return
		}
		st.token.Pop()
		mu.Lock()
		if registering {
			syncVal, syncErr, gotSync = v, err, true
			mu.Unlock()
			return
		}
		mu.Unlock()
		cont := func() { drive(st, stack, nil, true, v, err) }
		if hop != nil && hop != Inline {
			hop.Execute(cont)
		} else {
			cont()
		}
	}

	st.token.Push(func() { resume(nil, ErrCanceled) })

	mu.Lock()
	resumedEarly := gotSync
	mu.Unlock()
	if !resumedEarly {
		func() {
			// register is user code (the Async/Single registration
			// body): a panic here must surface as the suspension's
			// result instead of unwinding out of drive.
			defer func() {
				if r := recover(); r != nil {
					resume(nil, panicError(r))
				}
			}()
			register(resume)
		}()
	}
	mu.Lock()
	registering = false
	mu.Unlock()

	if !gotSync {
		return false, nil, nil
	}
	if hop != nil && hop != Inline {
		hop.Execute(func() { drive(st, stack, nil, true, syncVal, syncErr) })
		return false, nil, nil
	}
	return true, syncVal, syncErr
}

// suspendDispatch is suspendOn, except when st.stepOnce is set: then it
// never calls register at all, instead stashing a resume closure on st
// for the caller (Step) to invoke manually, and reports ok=false so
// drive returns immediately. Used exactly once per stepOnce run, since
// it clears the flag before returning.
func suspendDispatch(st *runState, stack *stackFrame, register func(func(Erased, error)), hop Connection) (ok bool, val Erased, err error) {
	if st.stepOnce {
		st.stepOnce = false
		st.stepResume = func(v Erased, e error) {
			cont := func() { drive(st, stack, nil, true, v, e) }
			if hop != nil && hop != Inline {
				hop.Execute(cont)
			} else {
				cont()
			}
		}
		return false, nil, nil
	}
	return suspendOn(st, stack, register, hop)
}
