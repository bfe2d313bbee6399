package state

import (
	"context"
	"strings"
)

// CreateBoard inserts a board optimistically under a provisional id and
// reconciles the server-assigned id on confirmation. The board is usable
// while unconfirmed, but lists cannot be created on it until the durable
// id arrives.
func (s *Store) CreateBoard(ctx context.Context, name, color string) (Board, error) {
	name = strings.TrimSpace(name)
	if color == "" {
		color = defaultBoardColor
	}
	provisional := NewProvisionalID()
	var confirmed Board

	err := s.run(ctx, command{
		name: "create board",
		validate: func(t *Tree) error {
			if name == "" {
				return validationf("board name is empty")
			}
			return nil
		},
		apply: func(t *Tree) {
			t.Boards = append(t.Boards, Board{ID: provisional, Name: name, Color: color})
			if t.ActiveBoard == "" {
				t.ActiveBoard = provisional
			}
		},
		call: func(ctx context.Context) (func(t *Tree), error) {
			wire, err := s.svc.CreateBoard(ctx, name, color)
			if err != nil {
				return nil, err
			}
			return func(t *Tree) {
				board := t.board(provisional)
				if board == nil {
					return
				}
				board.ID = IDFromServer(wire.ID)
				board.Name = wire.Name
				if wire.BackgroundColor != "" {
					board.Color = wire.BackgroundColor
				}
				if t.ActiveBoard == provisional {
					t.ActiveBoard = board.ID
				}
				confirmed = board.clone()
			}, nil
		},
	})
	if err != nil {
		return Board{}, err
	}
	return confirmed, nil
}

// CreateWorkspace is a direct round-trip: the workspace appears locally
// only after the server confirms it.
func (s *Store) CreateWorkspace(ctx context.Context, name, description string, userID int64) (Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Workspace{}, validationf("workspace name is empty")
	}
	wire, err := s.svc.CreateWorkspace(ctx, name, description, userID)
	if err != nil {
		return Workspace{}, err
	}

	ws := Workspace{
		ID:          IDFromServer(wire.ID),
		Name:        wire.Name,
		Description: wire.Description,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Workspaces = append(s.tree.Workspaces, ws)
	if s.tree.ActiveWorkspace == "" {
		s.tree.ActiveWorkspace = ws.ID
	}
	s.markDirtyLocked()
	return ws, nil
}

// CreateList appends a list to the given board. The title is trimmed and
// must be non-empty; the position is the last sibling's plus the fixed
// increment; siblings are never renumbered on create.
func (s *Store) CreateList(ctx context.Context, boardID ID, title string) (List, error) {
	title = strings.TrimSpace(title)
	provisional := NewProvisionalID()
	var (
		boardServerID int64
		position      float64
		confirmed     List
	)

	err := s.run(ctx, command{
		name: "create list",
		validate: func(t *Tree) error {
			if title == "" {
				return validationf("list title is empty")
			}
			board := t.board(boardID)
			if board == nil {
				return notFound("board", boardID)
			}
			serverID, ok := board.ID.ServerID()
			if !ok {
				return validationf("board %q is not confirmed yet", boardID)
			}
			boardServerID = serverID
			position = nextListPosition(board.Lists)
			return nil
		},
		apply: func(t *Tree) {
			board := t.board(boardID)
			board.Lists = append(board.Lists, List{
				ID:          provisional,
				Title:       title,
				Position:    position,
				Cards:       []Card{},
				CardsLoaded: true,
			})
		},
		call: func(ctx context.Context) (func(t *Tree), error) {
			wire, err := s.svc.CreateList(ctx, boardServerID, title, position)
			if err != nil {
				return nil, err
			}
			return func(t *Tree) {
				board := t.board(boardID)
				if board == nil {
					return
				}
				list := findList(board.Lists, provisional)
				if list == nil {
					return
				}
				list.ID = IDFromServer(wire.ID)
				list.Title = wire.Title
				list.Position = wire.Position
				sortListsByPosition(board.Lists)
				confirmed = list.clone()
			}, nil
		},
	})
	if err != nil {
		return List{}, err
	}
	return confirmed, nil
}

// CreateCard appends a card to the given list at the given position. A
// negative position means "end of list". A position colliding with an
// existing sibling is bumped to the end so the strictly-increasing
// invariant holds after the operation.
func (s *Store) CreateCard(ctx context.Context, listID ID, title string, position float64, description string) (Card, error) {
	title = strings.TrimSpace(title)
	provisional := NewProvisionalID()
	var (
		listServerID int64
		confirmed    Card
	)

	err := s.run(ctx, command{
		name: "create card",
		validate: func(t *Tree) error {
			if title == "" {
				return validationf("card title is empty")
			}
			_, list := t.list(listID)
			if list == nil {
				return notFound("list", listID)
			}
			serverID, ok := list.ID.ServerID()
			if !ok {
				return validationf("list %q is not confirmed yet", listID)
			}
			listServerID = serverID
			if position < 0 || collidesWithCard(list.Cards, position) {
				position = nextCardPosition(list.Cards)
			}
			return nil
		},
		apply: func(t *Tree) {
			_, list := t.list(listID)
			list.Cards = append(list.Cards, Card{
				ID:          provisional,
				Title:       title,
				Description: description,
				Position:    position,
			})
			sortCardsByPosition(list.Cards)
		},
		call: func(ctx context.Context) (func(t *Tree), error) {
			wire, err := s.svc.CreateCard(ctx, listServerID, title, position, description)
			if err != nil {
				return nil, err
			}
			return func(t *Tree) {
				_, list := t.list(listID)
				if list == nil {
					return
				}
				card := findCard(list.Cards, provisional)
				if card == nil {
					return
				}
				card.ID = IDFromServer(wire.ID)
				card.Title = wire.Title
				card.Position = wire.Position
				sortCardsByPosition(list.Cards)
				confirmed = card.clone()
			}, nil
		},
	})
	if err != nil {
		return Card{}, err
	}
	return confirmed, nil
}

// UpdateListTitle renames a list optimistically. The remote client
// verifies the echoed id; a mismatch surfaces as a protocol error and
// reverts the rename.
func (s *Store) UpdateListTitle(ctx context.Context, listID ID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	var listServerID int64

	return s.run(ctx, command{
		name: "rename list",
		validate: func(t *Tree) error {
			if newTitle == "" {
				return validationf("list title is empty")
			}
			_, list := t.list(listID)
			if list == nil {
				return notFound("list", listID)
			}
			serverID, ok := list.ID.ServerID()
			if !ok {
				return validationf("list %q is not confirmed yet", listID)
			}
			listServerID = serverID
			return nil
		},
		apply: func(t *Tree) {
			_, list := t.list(listID)
			list.Title = newTitle
		},
		call: func(ctx context.Context) (func(t *Tree), error) {
			wire, err := s.svc.RenameList(ctx, listServerID, newTitle)
			if err != nil {
				return nil, err
			}
			return func(t *Tree) {
				_, list := t.list(listID)
				if list == nil {
					return
				}
				list.Title = wire.Title
			}, nil
		},
	})
}

// UpdateCard edits a card's title and description optimistically.
func (s *Store) UpdateCard(ctx context.Context, cardID ID, newTitle, newDescription string) error {
	newTitle = strings.TrimSpace(newTitle)
	var cardServerID int64

	return s.run(ctx, command{
		name: "update card",
		validate: func(t *Tree) error {
			if newTitle == "" {
				return validationf("card title is empty")
			}
			_, card := t.card(cardID)
			if card == nil {
				return notFound("card", cardID)
			}
			serverID, ok := card.ID.ServerID()
			if !ok {
				return validationf("card %q is not confirmed yet", cardID)
			}
			cardServerID = serverID
			return nil
		},
		apply: func(t *Tree) {
			_, card := t.card(cardID)
			card.Title = newTitle
			card.Description = newDescription
		},
		call: func(ctx context.Context) (func(t *Tree), error) {
			wire, err := s.svc.UpdateCard(ctx, cardServerID, newTitle, newDescription)
			if err != nil {
				return nil, err
			}
			return func(t *Tree) {
				_, card := t.card(cardID)
				if card == nil {
					return
				}
				card.Title = wire.Title
				card.Description = wire.Description
			}, nil
		},
	})
}

// MoveCard removes the card from its source list and inserts it into the
// destination at toIndex (an index into the destination with the card
// already removed), before the network call is issued, so the UI reflects
// the move instantly. Same-list reordering and cross-list moves follow
// the same path. On failure the pre-move snapshot is restored.
func (s *Store) MoveCard(ctx context.Context, cardID, fromListID, toListID ID, toIndex int) error {
	var (
		cardServerID int64
		destServerID int64
		newPosition  float64
	)

	return s.run(ctx, command{
		name: "move card",
		validate: func(t *Tree) error {
			_, from := t.list(fromListID)
			if from == nil {
				return notFound("list", fromListID)
			}
			if findCard(from.Cards, cardID) == nil {
				return notFound("card", cardID)
			}
			_, to := t.list(toListID)
			if to == nil {
				return notFound("list", toListID)
			}
			card := findCard(from.Cards, cardID)
			serverID, ok := card.ID.ServerID()
			if !ok {
				return validationf("card %q is not confirmed yet", cardID)
			}
			cardServerID = serverID
			serverID, ok = to.ID.ServerID()
			if !ok {
				return validationf("list %q is not confirmed yet", toListID)
			}
			destServerID = serverID
			return nil
		},
		apply: func(t *Tree) {
			_, from := t.list(fromListID)
			_, to := t.list(toListID)

			var moved Card
			for i := range from.Cards {
				if from.Cards[i].ID == cardID {
					moved = from.Cards[i]
					from.Cards = append(from.Cards[:i], from.Cards[i+1:]...)
					break
				}
			}

			idx := toIndex
			if idx < 0 {
				idx = 0
			}
			if idx > len(to.Cards) {
				idx = len(to.Cards)
			}
			pos, ok := positionForIndex(to.Cards, idx)
			if !ok {
				// The gap between neighbors is exhausted; restore
				// gaps across the destination and retry.
				renumberCards(to.Cards)
				pos, _ = positionForIndex(to.Cards, idx)
			}
			moved.Position = pos
			newPosition = pos

			to.Cards = append(to.Cards, Card{})
			copy(to.Cards[idx+1:], to.Cards[idx:])
			to.Cards[idx] = moved
		},
		call: func(ctx context.Context) (func(t *Tree), error) {
			wire, err := s.svc.MoveCard(ctx, cardServerID, destServerID, newPosition)
			if err != nil {
				return nil, err
			}
			return func(t *Tree) {
				list, card := t.card(cardID)
				if card == nil {
					return
				}
				if wire.ID != 0 && wire.ID != cardServerID {
					// Confirmation for a different entity; drop it.
					return
				}
				if wire.ID != 0 {
					card.Position = wire.Position
					sortCardsByPosition(list.Cards)
				}
			}, nil
		},
	})
}

func collidesWithCard(cards []Card, position float64) bool {
	for i := range cards {
		if cards[i].Position == position {
			return true
		}
	}
	return false
}
