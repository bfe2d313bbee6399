package state

import (
	"context"
)

// defaultBoardColor is used when the server omits a board's background.
const defaultBoardColor = "#5d5b5f"

// FetchBoards loads all boards for the current session and merges them
// into the tree. Boards already holding loaded list/card subtrees keep
// them; locally-created boards awaiting confirmation are preserved. Auth
// failures propagate as remote auth errors so the caller can redirect to
// login.
func (s *Store) FetchBoards(ctx context.Context) error {
	boards, err := s.svc.FetchBoards(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]Board, 0, len(boards))
	for _, wire := range boards {
		id := IDFromServer(wire.ID)
		color := wire.BackgroundColor
		if color == "" {
			color = defaultBoardColor
		}
		if existing := s.tree.board(id); existing != nil {
			kept := *existing
			kept.Name = wire.Name
			kept.Color = color
			merged = append(merged, kept)
			continue
		}
		merged = append(merged, Board{ID: id, Name: wire.Name, Color: color})
	}
	for _, b := range s.tree.Boards {
		if b.ID.Provisional() {
			merged = append(merged, b)
		}
	}
	s.tree.Boards = merged

	if s.tree.board(s.tree.ActiveBoard) == nil {
		s.tree.ActiveBoard = ""
		if len(merged) > 0 {
			s.tree.ActiveBoard = merged[0].ID
		}
	}
	s.markDirtyLocked()
	return nil
}

// FetchWorkspaces loads the workspaces for the current session.
func (s *Store) FetchWorkspaces(ctx context.Context) error {
	workspaces, err := s.svc.FetchWorkspaces(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]Workspace, 0, len(workspaces))
	for _, wire := range workspaces {
		merged = append(merged, Workspace{
			ID:          IDFromServer(wire.ID),
			Name:        wire.Name,
			Description: wire.Description,
		})
	}
	s.tree.Workspaces = merged
	if s.tree.workspace(s.tree.ActiveWorkspace) == nil {
		s.tree.ActiveWorkspace = ""
		if len(merged) > 0 {
			s.tree.ActiveWorkspace = merged[0].ID
		}
	}
	s.markDirtyLocked()
	return nil
}

// FetchListsForBoard loads the lists of one board, preserving any card
// subtrees already loaded for lists that still exist. An empty result is
// a success and yields an empty (non-nil) Lists slice, distinct from a
// fetch failure which leaves the board untouched. A cancelled fetch
// (the active board changed before it completed) is discarded without
// mutating state. Unconfirmed lists created locally survive the merge
// so an in-flight create still has a node to reconcile into.
func (s *Store) FetchListsForBoard(ctx context.Context, boardID ID) error {
	serverID, err := s.boardServerID(boardID)
	if err != nil {
		return err
	}

	lists, err := s.svc.FetchLists(ctx, serverID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	board := s.tree.board(boardID)
	if board == nil {
		// Board vanished while the fetch was in flight (workspace
		// switch); drop the stale result.
		return notFound("board", boardID)
	}

	merged := make([]List, 0, len(lists))
	for _, wire := range lists {
		id := IDFromServer(wire.ID)
		next := List{
			ID:       id,
			Title:    wire.Title,
			Position: wire.Position,
		}
		if existing := findList(board.Lists, id); existing != nil {
			next.Cards = existing.Cards
			next.CardsLoaded = existing.CardsLoaded
		}
		merged = append(merged, next)
	}
	for _, l := range board.Lists {
		if l.ID.Provisional() {
			merged = append(merged, l)
		}
	}
	sortListsByPosition(merged)
	board.Lists = merged
	board.ListsLoaded = true
	s.markDirtyLocked()
	return nil
}

// FetchCardsForList loads the cards of one list.
func (s *Store) FetchCardsForList(ctx context.Context, listID ID) error {
	serverID, err := s.listServerID(listID)
	if err != nil {
		return err
	}

	cards, err := s.svc.FetchCards(ctx, serverID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, list := s.tree.list(listID)
	if list == nil {
		return notFound("list", listID)
	}

	merged := make([]Card, 0, len(cards))
	for _, wire := range cards {
		id := IDFromServer(wire.ID)
		next := Card{
			ID:          id,
			Title:       wire.Title,
			Description: wire.Description,
			CoverURL:    wire.CoverURL,
			Position:    wire.Position,
		}
		if existing := findCard(list.Cards, id); existing != nil {
			next.Comments = existing.Comments
			next.Attachments = existing.Attachments
			next.DetailLoaded = existing.DetailLoaded
		}
		merged = append(merged, next)
	}
	for _, c := range list.Cards {
		if c.ID.Provisional() {
			merged = append(merged, c)
		}
	}
	sortCardsByPosition(merged)
	list.Cards = merged
	list.CardsLoaded = true
	s.markDirtyLocked()
	return nil
}

func findList(lists []List, id ID) *List {
	for i := range lists {
		if lists[i].ID == id {
			return &lists[i]
		}
	}
	return nil
}

func findCard(cards []Card, id ID) *Card {
	for i := range cards {
		if cards[i].ID == id {
			return &cards[i]
		}
	}
	return nil
}

// boardServerID resolves a local board id to its server id, rejecting
// unknown boards and boards that have not been confirmed yet.
func (s *Store) boardServerID(boardID ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.tree.board(boardID)
	if board == nil {
		return 0, notFound("board", boardID)
	}
	serverID, ok := board.ID.ServerID()
	if !ok {
		return 0, validationf("board %q is not confirmed yet", boardID)
	}
	return serverID, nil
}

func (s *Store) listServerID(listID ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, list := s.tree.list(listID)
	if list == nil {
		return 0, notFound("list", listID)
	}
	serverID, ok := list.ID.ServerID()
	if !ok {
		return 0, validationf("list %q is not confirmed yet", listID)
	}
	return serverID, nil
}
