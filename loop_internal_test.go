// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import (
	"errors"
	"testing"
)

// TestPushRestoreContextRestoresOnErrorPath exercises
// pushRestoreContext's handler frame directly: on an error unwinding
// through it, st.ctx must already be back to old by the time the
// handler runs, before the error keeps propagating past it.
func TestPushRestoreContextRestoresOnErrorPath(t *testing.T) {
	type keyT struct{}
	outer := Background().WithValue(keyT{}, "outer")
	inner := Background().WithValue(keyT{}, "inner")

	st := &runState{token: NonCancelable, ctx: inner, conn: Inline, tracer: newTracer(nil, "t")}
	old := outer
	stack := pushRestoreContext(nil, st, old)

	var observedErr error
	var doneCalled bool
	st.done = func(v Erased, err error) {
		doneCalled = true
		observedErr = err
	}

	wantErr := errors.New("boom")
	drive(st, stack, nil, true, nil, wantErr)

	if !doneCalled {
		t.Fatal("run never completed")
	}
	if !errors.Is(observedErr, wantErr) {
		t.Fatalf("got error %v, want %v", observedErr, wantErr)
	}
	if st.ctx != outer {
		t.Fatalf("context not restored: got %+v, want outer", st.ctx)
	}
}

// TestPushRestoreConnectionRestoresOnErrorPath is
// TestPushRestoreContextRestoresOnErrorPath's Connection counterpart.
func TestPushRestoreConnectionRestoresOnErrorPath(t *testing.T) {
	var customRan bool
	custom := ConnectionFunc(func(fn func()) { customRan = true; fn() })

	st := &runState{token: NonCancelable, ctx: Background(), conn: custom, tracer: newTracer(nil, "t")}
	old := Inline
	stack := pushRestoreConnection(nil, st, old)

	st.done = func(Erased, error) {}

	drive(st, stack, nil, true, nil, errors.New("boom"))

	if st.conn != old {
		t.Fatalf("connection not restored: got %v, want Inline", st.conn)
	}
	_ = customRan
}

// TestHandleAlwaysNodeRunsContinuationOnBothPaths exercises the
// internal plumbing Bracket and Ensure are built on (resource.go)
// directly, confirming it runs its continuation exactly once whether
// the guarded computation succeeded or failed.
func TestHandleAlwaysNodeRunsContinuationOnBothPaths(t *testing.T) {
	calls := 0
	okEffect := Effect[int]{n: handleAlwaysNode{
		src: pureNode{v: 9},
		f: func(v Erased, err error) node {
			calls++
			if err != nil {
				t.Fatalf("unexpected error on success path: %v", err)
			}
			return pureNode{v: v.(int) * 2}
		},
	}}
	var got Result[int]
	Start(okEffect, func(r Result[int]) { got = r })
	if calls != 1 {
		t.Fatalf("continuation called %d times, want 1", calls)
	}
	v, _ := got.Value()
	if v != 18 {
		t.Fatalf("got %d, want 18", v)
	}

	calls = 0
	wantErr := errors.New("x")
	errEffect := Effect[int]{n: handleAlwaysNode{
		src: raiseErrorNode{err: wantErr},
		f: func(v Erased, err error) node {
			calls++
			if !errors.Is(err, wantErr) {
				t.Fatalf("got error %v, want %v", err, wantErr)
			}
			return pureNode{v: -1}
		},
	}}
	var got2 Result[int]
	Start(errEffect, func(r Result[int]) { got2 = r })
	if calls != 1 {
		t.Fatalf("continuation called %d times, want 1", calls)
	}
	v2, _ := got2.Value()
	if v2 != -1 {
		t.Fatalf("got %d, want -1 (recovered)", v2)
	}
}
