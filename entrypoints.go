// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import "github.com/google/uuid"

func newRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Start interprets e to completion, calling cb exactly once with the
// Result once the run finishes. e cannot observe cancellation: it runs
// against NonCancelable regardless of any WithLogger/WithConnection/
// WithContext options supplied.
//
// Start returns immediately if e completes (or first suspends) without
// yielding to a host callback; cb may therefore be called either before
// or after Start returns, but never more than once.
func Start[A any](e Effect[A], cb func(Result[A]), opts ...Option) {
	o := resolveOptions(opts)
	runEffect(e, NonCancelable, o, cb)
}

// StartCancelable is Start, but interprets e against token: if token is
// (or becomes) canceled before e finishes, the run completes early with
// ErrCanceled, and every finalizer token has accumulated via Push runs.
func StartCancelable[A any](e Effect[A], token *Token, cb func(Result[A]), opts ...Option) {
	if token == nil {
		token = NewToken()
	}
	o := resolveOptions(opts)
	runEffect(e, token, o, cb)
}

func runEffect[A any](e Effect[A], token *Token, o *runOptions, cb func(Result[A])) {
	runID := newRunID()
	st := &runState{
		token:  token,
		ctx:    o.ctx,
		conn:   o.conn,
		runID:  runID,
		tracer: newTracer(o.logger, runID),
	}
	st.done = func(v Erased, err error) {
		if err != nil {
			cb(Err[A](err))
			return
		}
		cb(Ok(v.(A)))
	}
	drive(st, nil, e.n, false, nil, nil)
}

// SuspendRun interprets e exactly like StartCancelable, except it
// returns a cancel function instead of taking a pre-built Token: a
// convenience for the common case where the caller only wants "start
// this, and give me a way to cancel it" without managing a Token's
// finalizers directly.
func SuspendRun[A any](e Effect[A], cb func(Result[A]), opts ...Option) (cancel func()) {
	token := NewToken()
	StartCancelable(e, token, cb, opts...)
	return token.Cancel
}

// Step interprets e until it either produces a final Result or reaches
// exactly one host suspension point, in which case it stops short of
// registering with the host at all and hands the caller a resume
// function instead: the caller decides when, and with what value, to
// supply the result that would otherwise have come from a Single/Async
// callback. It runs the same run-loop as Start and StartCancelable, for
// hosts that want to drive interpretation themselves (e.g. to
// interleave it with other work, or to test a suspension point in
// isolation).
//
// Exactly one of the two return values is non-zero: either done is true
// and cb has already been called with the outcome, or done is false and
// resume is non-nil.
// Calling resume drives the rest of the run (including any further
// suspensions) exactly as Start would, invoking cb once it finishes.
func Step[A any](e Effect[A], token *Token, cb func(Result[A]), opts ...Option) (resume func(A, error), done bool) {
	if token == nil {
		token = NonCancelable
	}
	o := resolveOptions(opts)

	runID := newRunID()
	st := &runState{
		token:  token,
		ctx:    o.ctx,
		conn:   o.conn,
		runID:  runID,
		tracer: newTracer(o.logger, runID),
	}
	st.stepOnce = true
	st.done = func(v Erased, err error) {
		if err != nil {
			cb(Err[A](err))
			return
		}
		cb(Ok(v.(A)))
	}

	drive(st, nil, e.n, false, nil, nil)

	if st.stepResume == nil {
		return nil, true
	}
	r := st.stepResume
	st.stepResume = nil
	return func(a A, err error) { r(a, err) }, false
}
