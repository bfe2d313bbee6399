package state

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// positionIncrement is the gap left between sibling positions so a later
// insertion between two neighbors does not force renumbering.
const positionIncrement = 1024

// ID identifies a workspace, board, list, card, comment, or attachment.
// Server-assigned ids are decimal strings; entities that exist only
// locally (created but not yet confirmed) carry a provisional id until
// reconciliation replaces it.
type ID string

const provisionalPrefix = "local-"

// NewProvisionalID returns a fresh client-generated id, recognizable as
// provisional until the server assigns a durable one.
func NewProvisionalID() ID {
	return ID(provisionalPrefix + uuid.NewString())
}

// Provisional reports whether the id is client-generated.
func (id ID) Provisional() bool {
	return strings.HasPrefix(string(id), provisionalPrefix)
}

// ServerID returns the numeric server id, or false for provisional or
// empty ids.
func (id ID) ServerID() (int64, bool) {
	if id == "" || id.Provisional() {
		return 0, false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IDFromServer converts a server-assigned numeric id.
func IDFromServer(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Tree is the full client-side board state: every loaded workspace and
// board plus the active pointers. Active-ness is the pointer alone; no
// per-entity boolean is stored anywhere.
type Tree struct {
	Workspaces      []Workspace `json:"workspaces"`
	Boards          []Board     `json:"boards"`
	ActiveBoard     ID          `json:"active"`
	ActiveWorkspace ID          `json:"active_workspace"`
}

// Workspace groups boards under one team context.
type Workspace struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Board holds an ordered sequence of lists. Lists are kept sorted by
// Position ascending; array order and position order never diverge
// outside a mutation in progress.
type Board struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"bgcolor"`
	Lists       []List `json:"lists"`
	ListsLoaded bool   `json:"lists_loaded"`
}

// List holds an ordered sequence of cards within a board.
type List struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Position    float64 `json:"position"`
	Cards       []Card  `json:"items"`
	CardsLoaded bool    `json:"cards_loaded"`
}

// Card is a single item within a list. Comments and attachments are not
// part of the eagerly-loaded tree; they are filled in when the card
// detail view opens.
type Card struct {
	ID           ID           `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	CoverURL     string       `json:"cover_url"`
	Position     float64      `json:"position"`
	Comments     []Comment    `json:"comments"`
	Attachments  []Attachment `json:"attachments"`
	DetailLoaded bool         `json:"detail_loaded"`
}

// Comment belongs to exactly one card and is addressed by its own id.
type Comment struct {
	ID        ID        `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment belongs to exactly one card and is addressed by its own id.
type Attachment struct {
	ID         ID        `json:"id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Clone returns a deep copy. Snapshots handed to consumers and the
// pre-mutation copies kept for revert must never share slices with the
// live tree.
func (t Tree) Clone() Tree {
	dup := t
	dup.Workspaces = append([]Workspace(nil), t.Workspaces...)
	dup.Boards = make([]Board, len(t.Boards))
	for i, b := range t.Boards {
		dup.Boards[i] = b.clone()
	}
	return dup
}

func (b Board) clone() Board {
	dup := b
	dup.Lists = make([]List, len(b.Lists))
	for i, l := range b.Lists {
		dup.Lists[i] = l.clone()
	}
	return dup
}

func (l List) clone() List {
	dup := l
	dup.Cards = make([]Card, len(l.Cards))
	for i, c := range l.Cards {
		dup.Cards[i] = c.clone()
	}
	return dup
}

func (c Card) clone() Card {
	dup := c
	dup.Comments = append([]Comment(nil), c.Comments...)
	dup.Attachments = append([]Attachment(nil), c.Attachments...)
	return dup
}

func (t *Tree) board(id ID) *Board {
	for i := range t.Boards {
		if t.Boards[i].ID == id {
			return &t.Boards[i]
		}
	}
	return nil
}

func (t *Tree) workspace(id ID) *Workspace {
	for i := range t.Workspaces {
		if t.Workspaces[i].ID == id {
			return &t.Workspaces[i]
		}
	}
	return nil
}

// list finds a list anywhere in the tree along with its owning board.
func (t *Tree) list(id ID) (*Board, *List) {
	for bi := range t.Boards {
		for li := range t.Boards[bi].Lists {
			if t.Boards[bi].Lists[li].ID == id {
				return &t.Boards[bi], &t.Boards[bi].Lists[li]
			}
		}
	}
	return nil, nil
}

// card finds a card anywhere in the tree along with its owning list.
func (t *Tree) card(id ID) (*List, *Card) {
	for bi := range t.Boards {
		for li := range t.Boards[bi].Lists {
			l := &t.Boards[bi].Lists[li]
			for ci := range l.Cards {
				if l.Cards[ci].ID == id {
					return l, &l.Cards[ci]
				}
			}
		}
	}
	return nil, nil
}

func sortListsByPosition(lists []List) {
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].Position < lists[j].Position
	})
}

func sortCardsByPosition(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Position < cards[j].Position
	})
}

// nextPosition returns the ordering key for appending after the given
// siblings: last position plus the fixed increment, or zero for the
// first entry. Siblings are never renumbered on append.
func nextListPosition(lists []List) float64 {
	if len(lists) == 0 {
		return 0
	}
	return lists[len(lists)-1].Position + positionIncrement
}

func nextCardPosition(cards []Card) float64 {
	if len(cards) == 0 {
		return 0
	}
	return cards[len(cards)-1].Position + positionIncrement
}

// positionForIndex computes an ordering key that places a card at index i
// among cards (which must already be sorted and must not contain the
// moving card). The key is the midpoint between neighbors when a gap
// exists; ok is false when the gap is exhausted and the caller must
// renumber.
func positionForIndex(cards []Card, i int) (pos float64, ok bool) {
	switch {
	case len(cards) == 0:
		return 0, true
	case i <= 0:
		return cards[0].Position - positionIncrement, true
	case i >= len(cards):
		return cards[len(cards)-1].Position + positionIncrement, true
	default:
		before, after := cards[i-1].Position, cards[i].Position
		mid := (before + after) / 2
		if mid > before && mid < after {
			return mid, true
		}
		return 0, false
	}
}

// renumberCards rewrites positions as index*increment, restoring gaps.
// Array order is preserved.
func renumberCards(cards []Card) {
	for i := range cards {
		cards[i].Position = float64(i) * positionIncrement
	}
}

// sanitize repairs a tree loaded from the persistent cache: lists and
// cards are re-sorted by position and dangling active pointers cleared.
// It never invents data, only restores the ordering invariants.
func (t *Tree) sanitize() {
	for bi := range t.Boards {
		sortListsByPosition(t.Boards[bi].Lists)
		for li := range t.Boards[bi].Lists {
			sortCardsByPosition(t.Boards[bi].Lists[li].Cards)
		}
	}
	if t.ActiveBoard != "" && t.board(t.ActiveBoard) == nil {
		t.ActiveBoard = ""
	}
	if t.ActiveWorkspace != "" && t.workspace(t.ActiveWorkspace) == nil {
		t.ActiveWorkspace = ""
	}
}
