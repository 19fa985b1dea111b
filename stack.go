// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import "sync"

// stackFrame is the run-loop's explicit call stack, used in place of
// native Go recursion so that arbitrarily long FlatMap chains are
// stack-safe. Each frame is either a bind continuation (bind != nil) or
// an error handler (handler != nil), never both; the two kinds share
// one pooled representation and one linked list so ErrorHandler lookup
// can walk past intervening Bind frames without a type switch.
//
// bFirst in the design notes is whichever *stackFrame the run-loop is
// currently holding; bRest is frame.next, the remainder of the stack.
type stackFrame struct {
	bind    func(Erased) node
	handler func(error) (node, bool)
	next    *stackFrame
	pooled  bool
}

var stackFramePool = sync.Pool{New: func() any { return new(stackFrame) }}

// pushBind allocates (or reuses) a frame that continues the chain on
// success by calling f with the completed value, and is skipped
// (released, without being called) if an error is propagating past it.
func pushBind(rest *stackFrame, f func(Erased) node) *stackFrame {
	fr := stackFramePool.Get().(*stackFrame)
	fr.bind = f
	fr.handler = nil
	fr.next = rest
	fr.pooled = true
	return fr
}

// pushHandler allocates (or reuses) a frame that is skipped on success
// and invoked on an in-flight error. h returns a replacement node to
// resume with and true if it recovered the error, or ok=false if it
// merely observed the error (e.g. to run a restore side effect) and the
// error should keep propagating.
func pushHandler(rest *stackFrame, h func(error) (node, bool)) *stackFrame {
	fr := stackFramePool.Get().(*stackFrame)
	fr.bind = nil
	fr.handler = h
	fr.next = rest
	fr.pooled = true
	return fr
}

// releaseFrame returns fr to the pool if it was pool-allocated. Frames
// built directly (not via pushBind/pushHandler) are left untouched, a
// safety valve for any future caller that bypasses the pool.
func releaseFrame(fr *stackFrame) {
	if fr == nil || !fr.pooled {
		return
	}
	fr.bind = nil
	fr.handler = nil
	fr.next = nil
	fr.pooled = false
	stackFramePool.Put(fr)
}
