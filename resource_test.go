// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/effect"
)

func TestBracketReleasesOnSuccess(t *testing.T) {
	released := false
	e := effect.Bracket(effect.Pure("conn"),
		func(conn string) effect.Effect[int] { return effect.Pure(len(conn)) },
		func(conn string, useErr error) error {
			released = true
			if conn != "conn" {
				t.Fatalf("release saw conn %q, want conn", conn)
			}
			if useErr != nil {
				t.Fatalf("release saw useErr %v, want nil", useErr)
			}
			return nil
		},
	)
	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r })
	if !got.IsOk() {
		t.Fatalf("run did not succeed: %v", got.Err())
	}
	v, _ := got.Value()
	if v != 4 {
		t.Fatalf("got %d, want 4", v)
	}
	if !released {
		t.Fatal("release never ran")
	}
}

func TestBracketReleasesOnUseError(t *testing.T) {
	useErr := errors.New("use failed")
	released := false
	var releasedWithErr error
	e := effect.Bracket(effect.Pure("conn"),
		func(string) effect.Effect[int] { return effect.RaiseError[int](useErr) },
		func(conn string, err error) error {
			released = true
			releasedWithErr = err
			return nil
		},
	)
	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r })
	if !got.IsErr() {
		t.Fatal("expected failure")
	}
	if !errors.Is(got.Err(), useErr) {
		t.Fatalf("got error %v, want %v", got.Err(), useErr)
	}
	if !released {
		t.Fatal("release never ran")
	}
	if !errors.Is(releasedWithErr, useErr) {
		t.Fatalf("release saw error %v, want %v", releasedWithErr, useErr)
	}
}

func TestBracketJoinsUseAndReleaseErrors(t *testing.T) {
	useErr := errors.New("use failed")
	relErr := errors.New("release failed")
	e := effect.Bracket(effect.Pure("conn"),
		func(string) effect.Effect[int] { return effect.RaiseError[int](useErr) },
		func(string, error) error { return relErr },
	)
	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r })
	if !got.IsErr() {
		t.Fatal("expected failure")
	}
	if !errors.Is(got.Err(), useErr) {
		t.Fatalf("joined error does not wrap useErr: %v", got.Err())
	}
	if !errors.Is(got.Err(), relErr) {
		t.Fatalf("joined error does not wrap relErr: %v", got.Err())
	}
}

func TestBracketReleaseErrorReplacesSuccessfulResult(t *testing.T) {
	relErr := errors.New("release failed")
	e := effect.Bracket(effect.Pure("conn"),
		func(string) effect.Effect[int] { return effect.Pure(1) },
		func(string, error) error { return relErr },
	)
	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r })
	if !got.IsErr() {
		t.Fatal("expected failure")
	}
	if !errors.Is(got.Err(), relErr) {
		t.Fatalf("got error %v, want %v", got.Err(), relErr)
	}
}

func TestBracketRunsReleaseOnCancellation(t *testing.T) {
	tok := effect.NewToken()
	released := false
	var releasedWithErr error
	e := effect.Bracket(effect.Pure("conn"),
		func(string) effect.Effect[int] {
			return effect.Async(func(resume func(int, error)) {
				// never resolves on its own
			})
		},
		func(conn string, err error) error {
			released = true
			releasedWithErr = err
			return nil
		},
	)
	done := make(chan effect.Result[int], 1)
	effect.StartCancelable(e, tok, func(r effect.Result[int]) { done <- r })
	tok.Cancel()
	r := <-done
	if !errors.Is(r.Err(), effect.ErrCanceled) {
		t.Fatalf("got error %v, want %v", r.Err(), effect.ErrCanceled)
	}
	if !released {
		t.Fatal("release never ran")
	}
	if !errors.Is(releasedWithErr, effect.ErrCanceled) {
		t.Fatalf("release saw error %v, want %v", releasedWithErr, effect.ErrCanceled)
	}
}

func TestEnsureRunsOnSuccessAndDoesNotAlterValue(t *testing.T) {
	ran := false
	e := effect.Ensure(effect.Pure(3), func() error { ran = true; return nil })
	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r })
	if !got.IsOk() {
		t.Fatalf("run did not succeed: %v", got.Err())
	}
	v, _ := got.Value()
	if v != 3 {
		t.Fatalf("got %d, want 3", v)
	}
	if !ran {
		t.Fatal("finalizer never ran")
	}
}

func TestEnsureJoinsOwnErrorOntoFailure(t *testing.T) {
	srcErr := errors.New("src failed")
	fnErr := errors.New("fn failed")
	e := effect.Ensure(effect.RaiseError[int](srcErr), func() error { return fnErr })
	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r })
	if !got.IsErr() {
		t.Fatal("expected failure")
	}
	if !errors.Is(got.Err(), srcErr) {
		t.Fatalf("joined error does not wrap srcErr: %v", got.Err())
	}
	if !errors.Is(got.Err(), fnErr) {
		t.Fatalf("joined error does not wrap fnErr: %v", got.Err())
	}
}
