// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import (
	"errors"
	"fmt"
)

// ErrCanceled is the error a run completes with when its Token is
// canceled before (or while) the run-loop is interpreting it.
var ErrCanceled = errors.New("effect: canceled")

// ErrNilEffect is substituted for a nil error passed to RaiseError, and
// returned by Step/Start when asked to interpret a zero-value Effect
// (one built without calling a constructor).
var ErrNilEffect = errors.New("effect: nil effect")

// panicError converts a value recovered from a panic in user code into
// an error, the run-loop's sole channel for turning a synchronous panic
// into an in-band RaiseError (Lazy thunks, Defer thunks, bind/handler
// continuations, and Async/Single registration bodies). Go's runtime
// already refuses recover on genuinely fatal errors (stack overflow,
// fatal out-of-memory): those propagate past this package regardless,
// so no separate carve-out is needed here.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("effect: panic recovered: %w", err)
	}
	return fmt.Errorf("effect: panic recovered: %v", r)
}
