// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect_test

import (
	"testing"

	"code.hybscloud.com/effect"
)

func TestWithConnectionNilIsIgnored(t *testing.T) {
	var executedOn string
	conn := effect.ConnectionFunc(func(fn func()) { executedOn = "custom"; fn() })

	e := effect.Async(func(resume func(int, error)) {
		resume(1, nil)
	})

	var got effect.Result[int]
	effect.Start(e, func(r effect.Result[int]) { got = r }, effect.WithConnection(conn), effect.WithConnection(nil))
	if !got.IsOk() {
		t.Fatalf("expected success")
	}
	if executedOn != "custom" {
		t.Fatalf("got %q, want custom (nil WithConnection should not clobber the Connection set before it)", executedOn)
	}
}

func TestWithContextSetsInitialAmbientContext(t *testing.T) {
	type keyT struct{}
	ctx := effect.Background().WithValue(keyT{}, "v")
	var got effect.Result[effect.Context]
	effect.Start(effect.ReadContext(), func(r effect.Result[effect.Context]) { got = r }, effect.WithContext(ctx))
	c, _ := got.Value()
	v, ok := c.Value(keyT{})
	if !ok || v != "v" {
		t.Fatalf("got (%v, %v), want (v, true)", v, ok)
	}
}

func TestNilOptionIsSkipped(t *testing.T) {
	var got effect.Result[int]
	effect.Start(effect.Pure(1), func(r effect.Result[int]) { got = r }, nil)
	if v, _ := got.Value(); v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
}
