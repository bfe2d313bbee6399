package state

import (
	"log"
	"sync"
	"time"

	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

// KV is the durable string-keyed store the tree is persisted into. It
// survives restarts; the SQLite implementation lives in internal/cache.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Options configure a Store. Service and Cache are injected so tests can
// substitute fakes; no ambient global lookup is involved.
type Options struct {
	Service remote.BoardService
	Cache   KV
	// FlushDelay bounds how long the in-memory tree and the persisted
	// snapshot may diverge. Zero uses the default.
	FlushDelay time.Duration
	Logf       func(format string, args ...any)
}

const defaultFlushDelay = 400 * time.Millisecond

// Store owns the canonical in-memory tree and the active pointers. All
// mutation goes through its operations; no consumer splices list or card
// slices directly. Snapshots are deep copies, so callers may hold them
// across later mutations.
type Store struct {
	svc   remote.BoardService
	cache KV
	logf  func(format string, args ...any)

	mu    sync.Mutex
	tree  Tree
	stash map[ID][]Board // warm board subtrees per inactive workspace

	flushDelay time.Duration
	timer      *time.Timer
	closed     bool
}

// New builds a Store. The tree starts empty; call Load to restore the
// previous session's snapshot before the first fetch.
func New(opts Options) *Store {
	flushDelay := opts.FlushDelay
	if flushDelay <= 0 {
		flushDelay = defaultFlushDelay
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Store{
		svc:        opts.Service,
		cache:      opts.Cache,
		logf:       logf,
		stash:      make(map[ID][]Board),
		flushDelay: flushDelay,
	}
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// ActiveBoard returns a copy of the active board, if one is set.
func (s *Store) ActiveBoard() (Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.tree.board(s.tree.ActiveBoard)
	if b == nil {
		return Board{}, false
	}
	return b.clone(), true
}

// ActiveWorkspace returns a copy of the active workspace, if one is set.
func (s *Store) ActiveWorkspace() (Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.tree.workspace(s.tree.ActiveWorkspace)
	if w == nil {
		return Workspace{}, false
	}
	return *w, true
}

// SetActiveBoard moves the active pointer. Purely local; the pointer must
// resolve to a tracked board.
func (s *Store) SetActiveBoard(boardID ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree.board(boardID) == nil {
		return notFound("board", boardID)
	}
	s.tree.ActiveBoard = boardID
	s.markDirtyLocked()
	return nil
}

// SetActiveWorkspace switches workspace context. The current board
// subtree is stashed and the target workspace's subtree swapped in from
// the warm cache when present, so switching back needs no refetch. The
// persisted snapshot is replaced on the next flush, so no prior-session
// state leaks across the switch.
func (s *Store) SetActiveWorkspace(workspaceID ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree.workspace(workspaceID) == nil {
		return notFound("workspace", workspaceID)
	}
	if workspaceID == s.tree.ActiveWorkspace {
		return nil
	}
	if prev := s.tree.ActiveWorkspace; prev != "" {
		s.stash[prev] = s.tree.Boards
	}
	s.tree.Boards = s.stash[workspaceID]
	delete(s.stash, workspaceID)
	s.tree.ActiveWorkspace = workspaceID
	s.tree.ActiveBoard = ""
	if len(s.tree.Boards) > 0 {
		s.tree.ActiveBoard = s.tree.Boards[0].ID
	}
	s.markDirtyLocked()
	return nil
}

// Logout drops all state and overwrites the persisted snapshot, so the
// next session cannot observe the previous account's boards.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.tree = Tree{}
	s.stash = make(map[ID][]Board)
	s.mu.Unlock()
	return s.FlushNow()
}
