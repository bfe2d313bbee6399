// Package ui renders the kanban board as a Bubble Tea program.
//
// The model never owns board data. Every frame renders from a snapshot
// of the state store, and every mutation goes through a store operation
// running in a tea.Cmd goroutine; the resulting message triggers a
// re-snapshot. That keeps Update and View free of locking and means a
// reverted optimistic change shows up on the next frame without any UI
// bookkeeping.
//
// Mouse drags and keyboard drags share one gesture controller. The
// mouse path resolves pointer coordinates to entities through the frame
// geometry computed by computeLayout, so hit-testing always agrees with
// what was drawn. Targets are recorded by identifier, not index, and
// resolved again at drop time against the tree as it is then.
//
// Switching boards cancels the previous board's in-flight list fetch so
// a slow response for the old board cannot land after the new one's.
package ui
