// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import "sync/atomic"

// suspension is a single-shot guard on a host resume callback, an
// atomic.Uintptr compare-and-increment idiom. A host is free to call
// the resume function bound to a suspension from any goroutine, any
// number of times; only the first call wins.
type suspension struct {
	used atomic.Uintptr
}

// fire reports whether this call is the one that gets to resume the
// run. Only the first caller observes true.
func (s *suspension) fire() bool {
	return s.used.Add(1) == 1
}
