// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

// Result[A] is the outcome handed to a run's top-level callback: either
// a successful value or the error that ended the run. It is a narrowed
// adaptation of a generic Either — the error channel here is always Go's
// built-in error, since that is the only error type RaiseError accepts.
type Result[A any] struct {
	value A
	err   error
	ok    bool
}

// Ok constructs a successful Result.
func Ok[A any](a A) Result[A] {
	return Result[A]{value: a, ok: true}
}

// Err constructs a failed Result. A nil err is replaced with
// ErrNilEffect so Result.Err() is never nil on a failed Result.
func Err[A any](err error) Result[A] {
	if err == nil {
		err = ErrNilEffect
	}
	return Result[A]{err: err}
}

// IsOk reports whether the Result is successful.
func (r Result[A]) IsOk() bool { return r.ok }

// IsErr reports whether the Result failed.
func (r Result[A]) IsErr() bool { return !r.ok }

// Value returns the successful value and true, or the zero value and
// false if the Result failed.
func (r Result[A]) Value() (A, bool) {
	return r.value, r.ok
}

// Err returns the failure, or nil if the Result succeeded.
func (r Result[A]) Err() error {
	if r.ok {
		return nil
	}
	return r.err
}

// Must returns the successful value, panicking with the wrapped error
// if the Result failed. Intended for tests and top-level glue code.
func (r Result[A]) Must() A {
	if !r.ok {
		panic(r.err)
	}
	return r.value
}

// MapResult transforms a successful Result's value, leaving a failed
// Result unchanged.
func MapResult[A, B any](r Result[A], f func(A) B) Result[B] {
	if !r.ok {
		return Result[B]{err: r.err}
	}
	return Ok(f(r.value))
}
