// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

// runOptions holds configuration resolved before a run starts.
type runOptions struct {
	logger *Logger
	conn   Connection
	ctx    Context
}

// Option configures a run started via Start or StartCancelable.
type Option interface {
	applyRun(*runOptions)
}

type optionFunc func(*runOptions)

func (f optionFunc) applyRun(o *runOptions) { f(o) }

// WithLogger attaches a Logger that receives structured trace events
// for every instruction dispatched, every suspension, and the run's
// final outcome. The default is a disabled logger (see NewNopLogger).
func WithLogger(log *Logger) Option {
	return optionFunc(func(o *runOptions) { o.logger = log })
}

// WithConnection sets the initial Connection, the default target for
// Async resumes before any ConnectionSwitch or AsyncContinueOn
// overrides it. The default is Inline.
func WithConnection(conn Connection) Option {
	return optionFunc(func(o *runOptions) {
		if conn != nil {
			o.conn = conn
		}
	})
}

// WithContext sets the initial ambient Context. The default is
// Background().
func WithContext(ctx Context) Option {
	return optionFunc(func(o *runOptions) { o.ctx = ctx })
}

func resolveOptions(opts []Option) *runOptions {
	o := &runOptions{
		logger: NewNopLogger(),
		conn:   Inline,
		ctx:    Background(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRun(o)
	}
	return o
}
