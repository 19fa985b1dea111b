// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import "errors"

// Bracket acquires a resource, runs use against it, and guarantees
// release runs afterward exactly once, regardless of whether use
// succeeds, fails, or is cut short by cancellation (which surfaces to
// release as ErrCanceled, the same error a canceled run would
// otherwise finish with). It is the interpreter-level counterpart to a
// try/finally: acquire itself is not protected, since a failure there
// means there is nothing yet to release.
//
// release receives the acquired resource and the error use failed with
// (nil on success), and returns an error of its own. If both use and
// release fail, the two are joined with errors.Join; a release failure
// following an otherwise-successful use replaces the result with that
// error.
func Bracket[A, B any](acquire Effect[A], use func(A) Effect[B], release func(resource A, useErr error) error) Effect[B] {
	return FlatMap(acquire, func(a A) Effect[B] {
		return handleAlways(use(a), func(res Result[B]) Effect[B] {
			var useErr error
			if res.IsErr() {
				useErr = res.Err()
			}
			relErr := release(a, useErr)
			switch {
			case useErr != nil && relErr != nil:
				return RaiseError[B](errors.Join(useErr, relErr))
			case relErr != nil:
				return RaiseError[B](relErr)
			case useErr != nil:
				return RaiseError[B](useErr)
			default:
				v, _ := res.Value()
				return Pure(v)
			}
		})
	})
}

// Ensure runs fn after e completes, whether it succeeds, fails, or is
// abandoned due to cancellation, without altering e's outcome. fn's
// own error, if any, is joined onto a failing e the same way Bracket
// joins a release error onto a use error; on an otherwise-successful e
// it replaces the result.
func Ensure[A any](e Effect[A], fn func() error) Effect[A] {
	return handleAlways(e, func(res Result[A]) Effect[A] {
		fnErr := fn()
		switch {
		case res.IsErr() && fnErr != nil:
			return RaiseError[A](errors.Join(res.Err(), fnErr))
		case fnErr != nil:
			return RaiseError[A](fnErr)
		case res.IsErr():
			return RaiseError[A](res.Err())
		default:
			v, _ := res.Value()
			return Pure(v)
		}
	})
}

// handleAlways runs e to completion, reifies its outcome as a Result
// (see result.go), and hands it to cont exactly once — whether e
// succeeded, failed, or was abandoned to cancellation — continuing
// with whatever cont returns. It is Bracket and Ensure's shared
// building block, and the only place this package constructs a
// handleAlwaysNode directly.
func handleAlways[A, B any](e Effect[A], cont func(Result[A]) Effect[B]) Effect[B] {
	return Effect[B]{n: handleAlwaysNode{
		src: e.n,
		f: func(v Erased, err error) node {
			var r Result[A]
			if err != nil {
				r = Err[A](err)
			} else {
				r = Ok(v.(A))
			}
			return cont(r).n
		},
	}}
}
