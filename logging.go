// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Logger is the structured logger type this package emits trace events
// through. It is a thin alias for logiface.Logger instantiated over
// this package's minimal slog-backed Event, so callers who already
// depend on logiface can plug in their own Option[*Event] (for example,
// one built from a different Writer) without this package needing to
// know about it.
type Logger = logiface.Logger[*Event]

// NewLogger builds a Logger that writes through handler via this
// package's adapter. Passing a nil handler is equivalent to calling
// NewNopLogger.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewNopLogger()
	}
	return logiface.New[*Event](newSlogAdapter(handler))
}

// NewNopLogger returns a Logger with logging disabled, the default used
// when a run is not configured with WithLogger.
func NewNopLogger() *Logger {
	return logiface.New[*Event](logiface.WithLevel[*Event](logiface.LevelDisabled))
}

// Event is this package's minimal logiface.Event implementation,
// backed by log/slog. It supports string, int, duration and error
// fields (the run-loop itself emits only strings and errors) and
// otherwise falls back to
// Event.AddField's generic path via UnimplementedEvent.
type Event struct {
	logiface.UnimplementedEvent

	handler slog.Handler
	level   logiface.Level
	msg     string
	attrs   []slog.Attr
}

var eventPool = sync.Pool{New: func() any { return new(Event) }}

// Level implements logiface.Event.
func (e *Event) Level() logiface.Level { return e.level }

// AddField implements logiface.Event.
func (e *Event) AddField(key string, val any) {
	e.attrs = append(e.attrs, slog.Any(key, val))
}

// AddMessage implements the optional logiface.Event method.
func (e *Event) AddMessage(msg string) bool {
	e.msg = msg
	return true
}

// AddError implements the optional logiface.Event method.
func (e *Event) AddError(err error) bool {
	e.attrs = append(e.attrs, slog.Any("error", err))
	return true
}

// AddString implements the optional logiface.Event method.
func (e *Event) AddString(key string, val string) bool {
	e.attrs = append(e.attrs, slog.String(key, val))
	return true
}

// AddInt implements the optional logiface.Event method.
func (e *Event) AddInt(key string, val int) bool {
	e.attrs = append(e.attrs, slog.Int(key, val))
	return true
}

// AddDuration implements the optional logiface.Event method.
func (e *Event) AddDuration(key string, val time.Duration) bool {
	e.attrs = append(e.attrs, slog.Duration(key, val))
	return true
}

func (e *Event) reset() {
	e.handler = nil
	e.level = logiface.LevelDisabled
	e.msg = ""
	e.attrs = e.attrs[:0]
}

func (e *Event) send() error {
	if e.handler == nil {
		return nil
	}
	rec := slog.NewRecord(time.Now(), toSlogLevel(e.level), e.msg, 0)
	rec.AddAttrs(e.attrs...)
	return e.handler.Handle(context.Background(), rec)
}

// slogAdapter implements logiface.EventFactory, logiface.Writer, and
// logiface.EventReleaser, the same trio
// joeycumines-go-utilpkg/logiface-slog's Logger implements, trimmed
// down to the handful of field types used in this package and without
// the OpenTelemetry-carrying dependency that adapter's go.mod brings
// in.
type slogAdapter struct {
	handler slog.Handler
}

func newSlogAdapter(handler slog.Handler) logiface.Option[*Event] {
	a := &slogAdapter{handler: handler}
	return logiface.WithOptions[*Event](
		logiface.WithEventFactory[*Event](a),
		logiface.WithWriter[*Event](a),
		logiface.WithEventReleaser[*Event](a),
		logiface.WithLevel[*Event](logiface.LevelTrace),
	)
}

// NewEvent implements logiface.EventFactory.
func (a *slogAdapter) NewEvent(level logiface.Level) *Event {
	e := eventPool.Get().(*Event)
	e.handler = a.handler
	e.level = level
	return e
}

// Write implements logiface.Writer.
func (a *slogAdapter) Write(e *Event) error {
	if e == nil {
		return nil
	}
	return e.send()
}

// ReleaseEvent implements logiface.EventReleaser.
func (a *slogAdapter) ReleaseEvent(e *Event) {
	if e == nil {
		return
	}
	e.reset()
	eventPool.Put(e)
}

// recordedEvent is one entry captured by a recordingWriter: a snapshot
// taken at Write time, since the *Event backing it is pooled and
// reused the moment ReleaseEvent runs.
type recordedEvent struct {
	Level   logiface.Level
	Message string
	Attrs   []slog.Attr
}

// newRecordingWriter returns a Logger that accumulates every event
// written through it in declaration order, and a func to retrieve them.
// It exists for tests that want to assert on the run-loop's emitted
// trace events without standing up real slog output.
func newRecordingWriter() (*Logger, func() []recordedEvent) {
	w := &recordingWriter{}
	log := logiface.New[*Event](logiface.WithOptions[*Event](
		logiface.WithEventFactory[*Event](w),
		logiface.WithWriter[*Event](w),
		logiface.WithEventReleaser[*Event](w),
		logiface.WithLevel[*Event](logiface.LevelTrace),
	))
	return log, func() []recordedEvent {
		w.mu.Lock()
		defer w.mu.Unlock()
		out := make([]recordedEvent, len(w.events))
		copy(out, w.events)
		return out
	}
}

type recordingWriter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (w *recordingWriter) NewEvent(level logiface.Level) *Event {
	e := eventPool.Get().(*Event)
	e.level = level
	return e
}

func (w *recordingWriter) Write(e *Event) error {
	if e == nil {
		return nil
	}
	attrs := make([]slog.Attr, len(e.attrs))
	copy(attrs, e.attrs)
	w.mu.Lock()
	w.events = append(w.events, recordedEvent{Level: e.level, Message: e.msg, Attrs: attrs})
	w.mu.Unlock()
	return nil
}

func (w *recordingWriter) ReleaseEvent(e *Event) {
	if e == nil {
		return
	}
	e.reset()
	eventPool.Put(e)
}

func toSlogLevel(l logiface.Level) slog.Level {
	switch {
	case l >= logiface.LevelDebug:
		return slog.LevelDebug
	case l >= logiface.LevelInformational:
		return slog.LevelInfo
	case l >= logiface.LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// tracer is the run-loop's internal view of logging: a handful of
// narrow, allocation-conscious hooks called from the hot dispatch loop.
// It is backed by a *Logger but keeps loop.go from depending on
// logiface's Builder API directly.
type tracer struct {
	log   *Logger
	runID string
}

func newTracer(log *Logger, runID string) tracer {
	if log == nil {
		log = NewNopLogger()
	}
	return tracer{log: log, runID: runID}
}

func (t tracer) dispatch(n node) {
	b := t.log.Trace()
	if !b.Enabled() {
		return
	}
	b.Str("run_id", t.runID).Str("node", fmt.Sprintf("%T", n)).Log("dispatch")
}

func (t tracer) suspend(kind string) {
	b := t.log.Debug()
	if !b.Enabled() {
		return
	}
	b.Str("run_id", t.runID).Str("kind", kind).Log("suspend")
}

func (t tracer) finish(err error) {
	b := t.log.Debug()
	if !b.Enabled() {
		return
	}
	b = b.Str("run_id", t.runID)
	if err != nil {
		b = b.Err(err)
	}
	b.Log("finish")
}

func (t tracer) canceled() {
	b := t.log.Info()
	if !b.Enabled() {
		return
	}
	b.Str("run_id", t.runID).Log("canceled")
}
