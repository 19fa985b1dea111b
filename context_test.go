// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect_test

import (
	"testing"

	"code.hybscloud.com/effect"
)

type ctxKeyA struct{}
type ctxKeyB struct{}

func TestContextWithValueShadowsOlderEntry(t *testing.T) {
	c := effect.Background().WithValue(ctxKeyA{}, 1).WithValue(ctxKeyA{}, 2)
	v, ok := c.Value(ctxKeyA{})
	if !ok || v != 2 {
		t.Fatalf("got (%v, %v), want (2, true)", v, ok)
	}
}

func TestContextValueMissingKey(t *testing.T) {
	c := effect.Background().WithValue(ctxKeyA{}, 1)
	_, ok := c.Value(ctxKeyB{})
	if ok {
		t.Fatalf("expected no entry for ctxKeyB")
	}
}

func TestContextIsImmutable(t *testing.T) {
	base := effect.Background().WithValue(ctxKeyA{}, "base")
	derived := base.WithValue(ctxKeyA{}, "derived")

	baseVal, _ := base.Value(ctxKeyA{})
	derivedVal, _ := derived.Value(ctxKeyA{})
	if baseVal != "base" {
		t.Fatalf("base context mutated: got %v", baseVal)
	}
	if derivedVal != "derived" {
		t.Fatalf("got %v, want derived", derivedVal)
	}
}

func TestInlineConnectionRunsSynchronously(t *testing.T) {
	ran := false
	effect.Inline.Execute(func() { ran = true })
	if !ran {
		t.Fatalf("Inline.Execute did not run fn")
	}
}

func TestConnectionFunc(t *testing.T) {
	var got int
	conn := effect.ConnectionFunc(func(fn func()) { got = 1; fn() })
	conn.Execute(func() { got = 2 })
	if got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}
