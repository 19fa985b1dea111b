// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

// Context is an immutable ambient property bag carried by the run-loop
// across every step, including async hops. It is unrelated to
// cancellation (see Token) and unrelated to stdlib context.Context,
// though WithValue/Value deliberately mirror that package's naming:
// readers already know what they do.
//
// The zero Context is empty (equivalent to Background()).
type Context struct {
	n *contextNode
}

type contextNode struct {
	key, value any
	prev       *contextNode
}

// Background returns the empty Context.
func Background() Context {
	return Context{}
}

// WithValue returns a new Context that has value associated with key,
// shadowing any existing entry under the same key, and otherwise
// identical to c. Keys are compared with ==, so key should be a
// comparable type, conventionally an unexported struct{} type to avoid
// collisions across packages.
func (c Context) WithValue(key, value any) Context {
	return Context{n: &contextNode{key: key, value: value, prev: c.n}}
}

// Value returns the value associated with key and true, or (nil,
// false) if no entry exists. Lookup walks newest-to-oldest, so the most
// recent WithValue for a given key wins.
func (c Context) Value(key any) (any, bool) {
	for n := c.n; n != nil; n = n.prev {
		if n.key == key {
			return n.value, true
		}
	}
	return nil, false
}

// Connection identifies where a continuation should run after an
// asynchronous resume: a specific event loop, worker, or actor. It is
// intentionally minimal — this package schedules nothing on its own —
// and exists only so AsyncContinueOn and ConnectionSwitch have
// something concrete to carry.
type Connection interface {
	// Execute runs fn, either inline or handed off to wherever this
	// Connection represents. Implementations that hand off must still
	// run fn exactly once.
	Execute(fn func())
}

// inlineConnection runs fn synchronously, on the calling goroutine. It
// is the default Connection for a run that never switches.
type inlineConnection struct{}

func (inlineConnection) Execute(fn func()) { fn() }

// Inline is the default Connection: Execute runs fn immediately, on the
// calling goroutine.
var Inline Connection = inlineConnection{}

// ConnectionFunc adapts a plain function to a Connection.
type ConnectionFunc func(fn func())

// Execute calls f(fn).
func (f ConnectionFunc) Execute(fn func()) { f(fn) }
