// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import (
	"sync"
	"sync/atomic"
)

// Token is a cooperative cancellation signal shared by every step of a
// run. Cancellation is monotonic: once canceled, a Token never becomes
// un-canceled. Finalizers registered with Push run, most-recently-added
// first, exactly once, the first time the Token transitions to
// canceled (or immediately, if it is already canceled when pushed).
//
// Token is safe for concurrent use; Cancel may be called from any
// goroutine, including one invoking a Single/Async resume callback.
type Token struct {
	canceled   atomic.Uintptr // 0 = live, 1 = canceled (CAS guard, mirrors Affine's single-use idiom)
	mu         sync.Mutex
	finalizers []func()
}

// NonCancelable is the distinguished Token that can never be canceled.
// Cancel and Push are both no-ops on it; IsCanceled always reports
// false. Use it for computations that must not observe cancellation,
// e.g. cleanup logic run from a finalizer.
var NonCancelable = &Token{}

// NewToken returns a fresh, live, cancelable Token with no finalizers.
func NewToken() *Token {
	return &Token{}
}

// IsCanceled reports whether the Token has been canceled. NonCancelable
// always answers false despite its internal sentinel state.
func (t *Token) IsCanceled() bool {
	if t == NonCancelable {
		return false
	}
	return t.canceled.Load() != 0
}

// Cancel marks the Token canceled and runs every registered finalizer,
// most recently pushed first, exactly once. Calling Cancel on an
// already-canceled Token (or on NonCancelable) is a no-op. Cancel does
// not block on finalizers started by a previous concurrent call; it
// returns once its own call won the race or observes the Token is
// already canceled.
func (t *Token) Cancel() {
	if t == NonCancelable {
		return
	}
	if !t.canceled.CompareAndSwap(0, 1) {
		return
	}
	t.mu.Lock()
	finalizers := t.finalizers
	t.finalizers = nil
	t.mu.Unlock()
	for i := len(finalizers) - 1; i >= 0; i-- {
		finalizers[i]()
	}
}

// Push registers fn to run when the Token is canceled, most recently
// pushed first (LIFO), matching the nesting order of the bracket-style
// resource scopes that typically register finalizers. If the Token is
// already canceled, fn runs immediately, synchronously, before Push
// returns. Push on NonCancelable never runs fn.
func (t *Token) Push(fn func()) {
	if t == NonCancelable || fn == nil {
		return
	}
	t.mu.Lock()
	if t.canceled.Load() != 0 {
		t.mu.Unlock()
		fn()
		return
	}
	t.finalizers = append(t.finalizers, fn)
	t.mu.Unlock()
}

// Pop removes the most recently pushed finalizer without running it,
// returning false if there was none to remove (including when the
// Token has already fired its finalizers on cancellation). It is the
// bracket-release counterpart to Push: once a protected action
// completes normally, its finalizer is popped so Cancel will not also
// run it.
func (t *Token) Pop() bool {
	if t == NonCancelable {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.finalizers)
	if n == 0 {
		return false
	}
	t.finalizers = t.finalizers[:n-1]
	return true
}
