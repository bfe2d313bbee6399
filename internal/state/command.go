package state

import (
	"context"
)

// command is one optimistic mutation as a value: preconditions, the local
// forward-apply, the server call, and the reconcile step. The revert path
// is uniform (the pre-mutation snapshot captured by run), which keeps it
// testable independently of any particular operation.
type command struct {
	name string
	// validate checks preconditions against the live tree. A non-nil
	// error aborts the command before any side effect.
	validate func(t *Tree) error
	// apply performs the optimistic local mutation.
	apply func(t *Tree)
	// call performs the server round-trip and returns the reconcile
	// step. Reconcile closures must locate their entity by id and
	// no-op when it has vanished: confirmations are matched by request
	// identity, never "most recent call wins".
	call func(ctx context.Context) (reconcile func(t *Tree), err error)
}

// run drives a command through the optimistic-update protocol:
//
//  1. validate against the live tree; fail fast with no side effects
//  2. capture the pre-mutation snapshot, then apply optimistically
//  3. issue the server call with the store unlocked, so further local
//     mutations stay responsive while the request is in flight
//  4. on success, reconcile server-confirmed ids/fields into the tree
//  5. on failure, restore the pre-mutation snapshot and surface the error
//
// The revert in step 5 is whole-tree: a mutation that landed while the
// failed call was in flight rolls back with it. The window is one
// round-trip wide and the next fetch re-converges.
func (s *Store) run(ctx context.Context, cmd command) error {
	s.mu.Lock()
	if cmd.validate != nil {
		if err := cmd.validate(&s.tree); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	before := s.tree.Clone()
	if cmd.apply != nil {
		cmd.apply(&s.tree)
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if cmd.call == nil {
		return nil
	}

	reconcile, err := cmd.call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.tree = before
		s.markDirtyLocked()
		return err
	}
	if reconcile != nil {
		reconcile(&s.tree)
		s.markDirtyLocked()
	}
	return nil
}
