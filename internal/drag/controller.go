// Package drag turns a continuous pointer gesture into a single discrete
// card move.
//
// The controller is a small state machine (Idle → Dragging → Idle) fed by
// the presentation layer: the UI performs hit-testing against its own
// geometry and reports what the pointer is over; the controller tracks
// the origin and the latest valid drop target, both keyed by identifier.
// At release it re-resolves everything against the current tree snapshot,
// never against indices captured mid-gesture, so data refreshing under
// an active drag either lands correctly or aborts the gesture, but never
// splices the wrong slot. The async server confirmation of the resulting
// move is decoupled from the gesture: the controller returns to Idle on
// drop regardless of what the store's round-trip later reports.
package drag

import (
	"github.com/boardwalk-tui/boardwalk/internal/state"
)

// Hit reports what the pointer is over during a drag sample. The UI
// computes it from geometry: CardID is empty when the pointer is over a
// list but not over any card (the "end of list" zone), and Above is the
// vertical-midpoint rule: true when the pointer is above the hovered
// card's midpoint (insert before), false when below (insert after).
type Hit struct {
	ListID state.ID
	CardID state.ID
	Above  bool
}

// Move is the discrete reorder produced by a completed gesture, in the
// form the state store's MoveCard expects: ToIndex is the insertion
// index into the destination list with the card already removed from its
// source.
type Move struct {
	CardID     state.ID
	FromListID state.ID
	ToListID   state.ID
	ToIndex    int
}

// target is the latest valid drop target, keyed by identifier. An empty
// anchor means "end of list".
type target struct {
	listID state.ID
	anchor state.ID
	above  bool
}

// Controller tracks at most one in-progress gesture. Only one gesture
// can be active at a time; Start while dragging is ignored, matching a
// pointer that is already captured.
type Controller struct {
	dragging bool
	cardID   state.ID
	fromList state.ID
	target   *target
}

// Dragging reports whether a gesture is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// CardID returns the dragged card's id, or "" outside a gesture.
func (c *Controller) CardID() state.ID {
	if !c.dragging {
		return ""
	}
	return c.cardID
}

// Target returns the latest valid drop target. The boolean is false
// outside a gesture or before any sample landed on a list.
func (c *Controller) Target() (Hit, bool) {
	if !c.dragging || c.target == nil {
		return Hit{}, false
	}
	return Hit{ListID: c.target.listID, CardID: c.target.anchor, Above: c.target.above}, true
}

// Start begins a gesture on the given card. Reports whether a new
// gesture actually started.
func (c *Controller) Start(cardID, listID state.ID) bool {
	if c.dragging || cardID == "" || listID == "" {
		return false
	}
	c.dragging = true
	c.cardID = cardID
	c.fromList = listID
	c.target = nil
	return true
}

// Update records a pointer-move sample. A sample over nothing keeps the
// previous valid target; a sample over a list replaces it.
func (c *Controller) Update(hit Hit, over bool) {
	if !c.dragging || !over || hit.ListID == "" {
		return
	}
	c.target = &target{listID: hit.ListID, anchor: hit.CardID, above: hit.Above}
}

// Cancel abandons the gesture with no state change.
func (c *Controller) Cancel() {
	c.reset()
}

// Drop completes the gesture against the current tree snapshot. The
// origin and target are re-resolved by identifier; if the card, the
// destination list, or the anchor card vanished while dragging, the
// gesture aborts with no move. A drop onto the card's own slot is the
// allowed no-op: the card stays put and no move is produced, so no
// network write is issued. The controller returns to Idle in every case.
func (c *Controller) Drop(tree state.Tree) (Move, bool) {
	defer c.reset()

	if !c.dragging || c.target == nil {
		return Move{}, false
	}

	fromList, fromIndex := locateCard(tree, c.cardID)
	if fromList == nil {
		return Move{}, false
	}
	toList := locateList(tree, c.target.listID)
	if toList == nil {
		return Move{}, false
	}

	// Insertion index with the dragged card still in place.
	insert := len(toList.Cards)
	if c.target.anchor != "" {
		anchorIndex := indexOfCard(toList.Cards, c.target.anchor)
		if anchorIndex < 0 {
			return Move{}, false
		}
		insert = anchorIndex
		if !c.target.above {
			insert++
		}
	}

	// Rebase onto the destination with the card removed.
	sameList := fromList.ID == toList.ID
	if sameList && insert > fromIndex {
		insert--
	}
	limit := len(toList.Cards)
	if sameList {
		limit--
	}
	if insert > limit {
		insert = limit
	}
	if insert < 0 {
		insert = 0
	}

	if sameList && insert == fromIndex {
		return Move{}, false
	}

	return Move{
		CardID:     c.cardID,
		FromListID: fromList.ID,
		ToListID:   toList.ID,
		ToIndex:    insert,
	}, true
}

func (c *Controller) reset() {
	c.dragging = false
	c.cardID = ""
	c.fromList = ""
	c.target = nil
}

func locateCard(tree state.Tree, id state.ID) (*state.List, int) {
	for bi := range tree.Boards {
		for li := range tree.Boards[bi].Lists {
			list := &tree.Boards[bi].Lists[li]
			if i := indexOfCard(list.Cards, id); i >= 0 {
				return list, i
			}
		}
	}
	return nil, -1
}

func locateList(tree state.Tree, id state.ID) *state.List {
	for bi := range tree.Boards {
		for li := range tree.Boards[bi].Lists {
			if tree.Boards[bi].Lists[li].ID == id {
				return &tree.Boards[bi].Lists[li]
			}
		}
	}
	return nil
}

func indexOfCard(cards []state.Card, id state.ID) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}
