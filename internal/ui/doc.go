// Package ui contains the dashboard's render and state loop.
//
// Unlike a typical Bubble Tea application, the loop is explicit. Bubble Tea
// only owns the terminal (see internal/terminal); the loop lives on the main
// goroutine and repeats four steps:
//   - Render the dashboard state to a frame and draw it.
//   - If a lookup is pending, submit the selected region to the multiplexer.
//     Submission never blocks and a failure is logged, not fatal.
//   - Block on exactly one input event (a key press or a tick) and apply the
//     key table. Any event other than the fetch key clears the pending lookup,
//     so one fetch key press yields one request.
//   - Drain every result that has already arrived without blocking and merge
//     successes into the forecast cache.
//
// Results are keyed by region, so their arrival order does not matter. The
// tick keeps the loop turning while the user is idle, which is what lets late
// results show up on screen.
//
// State ownership:
//   - internal/ui/state.Dashboard holds the active channel, regions, cursor,
//     pending flag and forecast cache. Only the loop touches it.
//   - Key bindings live in KeyMap and may be overridden from configuration.
//   - Rendering is a pure function of the state (Render), which keeps the
//     Harness-driven tests free of any terminal.
package ui
