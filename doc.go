// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package effect provides a trampolined interpreter for an algebraic
// effect type, [Effect], covering pure values, lazy thunks, error
// raising, sequencing, asynchronous host callbacks, and ambient context
// switches.
//
// # Design Philosophy
//
// The interpreter is a single state machine unifying three concerns
// that are each individually easy and together delicate:
//
//   - Stack-safe interpretation of arbitrarily deep FlatMap chains via
//     an explicit, pooled continuation stack instead of native Go
//     recursion.
//   - Bridging synchronous interpretation with a callback-based async
//     world without growing the call stack when a host resumes
//     synchronously, and without losing the in-flight continuation
//     when it resumes later, from another goroutine.
//   - Cooperative cancellation and dynamic ambient-context propagation
//     across those async boundaries, restored correctly on every exit
//     path: success, failure, or cancellation.
//
// # Instruction Set
//
// [Effect] values are built from a closed set of constructors:
//
//   - [Pure], [RaiseError], [Lazy], [Defer]: values and thunks.
//   - [Map], [FlatMap]: sequencing.
//   - [Single], [Async]: suspension on a host callback, resumable from
//     any goroutine; the latter continues via the run's Connection.
//   - [AsyncContinueOn], [ConnectionSwitch]: routing a continuation
//     through a [Connection] other than the one that resumed it.
//   - [AsyncContextSwitch], [ReadContext]: replacing and observing the
//     ambient [Context] a run carries.
//   - [UpdateContext], [ContinueOn]: synchronous sugar over
//     AsyncContextSwitch/AsyncContinueOn, for the common case where the
//     switch takes effect immediately rather than behind a real
//     callback.
//
// # Running an Effect
//
//   - [Start]: interpret to completion against a non-cancelable run.
//   - [StartCancelable]: interpret against a caller-supplied [Token].
//   - [SuspendRun]: StartCancelable, returning a cancel func instead of
//     requiring a pre-built Token.
//   - [Step]: interpret up to the next suspension (or completion) and
//     return a resume func instead of registering with the host,
//     for callers that want to drive interpretation themselves.
//
// # Cancellation
//
// [Token] is a monotonic, thread-safe cancellation flag with LIFO
// finalizers ([Token.Push]/[Token.Pop]); [NonCancelable] is the
// distinguished Token on which Cancel and Push are no-ops.
//
// # Resource Safety
//
// [Bracket] and [Ensure] guarantee a release/cleanup action runs after
// a protected Effect finishes, on every path, including cancellation.
// They are ordinary combinators built on top of the core instruction
// set, not part of it.
//
// # Result
//
// [Result] reifies an Effect's outcome as an Ok/Err value, the shape
// every top-level callback receives.
package effect
