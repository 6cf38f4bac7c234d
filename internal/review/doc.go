// Package review implements the inbox review pipeline.
//
// A run fetches the inbox tasks of one project (tasks without a section),
// then for each task in fetch order rewrites its text with a language model,
// writes the new text back and moves the task into the reviewed section.
//
// Every stage returns its value and an error. A failing stage returns a
// *StageError that carries the stage name and a coarse ErrorKind; the
// Pipeline then applies the fail-open policy explicitly:
//
//   - fetch fails: the run becomes a no-op
//   - rewrite fails: the original text is written back unchanged
//   - update fails: the task is still moved (unless StrictMove is set)
//   - move fails: the task is left where it is and the loop continues
//
// Only missing credentials and invalid configuration stop a run before it
// starts. Cancelling the context stops the loop between tasks.
package review
