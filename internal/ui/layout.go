package ui

import (
	"github.com/boardwalk-tui/boardwalk/internal/drag"
	"github.com/boardwalk-tui/boardwalk/internal/state"
)

const (
	columnWidth  = 28
	columnGap    = 1
	sidebarWidth = 24
	headerRows   = 1
	footerRows   = 1

	// cardRows is the rendered height of one card: title row plus a
	// badge row. Two rows give the pointer a real top and bottom half
	// for above/below drop resolution.
	cardRows = 2
)

// cardRect is the screen rectangle one card occupied in the last frame.
type cardRect struct {
	listID state.ID
	cardID state.ID
	x0, x1 int
	y0, y1 int
}

// columnRect is the screen rectangle one column occupied.
type columnRect struct {
	listID state.ID
	x0, x1 int
	y0, y1 int
	// cardsTop is the first row cards render on inside the column.
	cardsTop int
}

// boardLayout records where the last frame put things so mouse
// coordinates can be resolved back to entities.
type boardLayout struct {
	columns []columnRect
	cards   []cardRect
}

// computeLayout derives the frame geometry for the active board. View
// and the mouse handler both rely on it, so the two cannot drift apart.
func computeLayout(board *state.Board, width, height int, sidebarOn bool) boardLayout {
	var l boardLayout
	if board == nil {
		return l
	}
	x := 0
	if sidebarOn {
		x = sidebarWidth + 1
	}
	top := headerRows
	bottom := height - footerRows - 1
	for i := range board.Lists {
		list := &board.Lists[i]
		if x+columnWidth > width {
			break
		}
		col := columnRect{
			listID:   list.ID,
			x0:       x,
			x1:       x + columnWidth - 1,
			y0:       top,
			y1:       bottom,
			cardsTop: top + 2,
		}
		l.columns = append(l.columns, col)
		y := col.cardsTop
		for j := range list.Cards {
			if y+cardRows-1 > bottom {
				break
			}
			l.cards = append(l.cards, cardRect{
				listID: list.ID,
				cardID: list.Cards[j].ID,
				x0:     col.x0 + 1,
				x1:     col.x1 - 1,
				y0:     y,
				y1:     y + cardRows - 1,
			})
			y += cardRows + 1
		}
		x += columnWidth + columnGap
	}
	return l
}

// hit resolves a screen coordinate to a drop target. The boolean is
// false when the pointer is outside every column.
func (l boardLayout) hit(x, y int) (drag.Hit, bool) {
	for _, c := range l.cards {
		if x >= c.x0 && x <= c.x1 && y >= c.y0 && y <= c.y1 {
			return drag.Hit{
				ListID: c.listID,
				CardID: c.cardID,
				Above:  y < c.y0+cardRows/2+cardRows%2,
			}, true
		}
	}
	for _, col := range l.columns {
		if x >= col.x0 && x <= col.x1 && y >= col.y0 && y <= col.y1 {
			// Inside the column but not on a card: append to the end.
			return drag.Hit{ListID: col.listID}, true
		}
	}
	return drag.Hit{}, false
}

// columnAt returns the index of the column under x, or -1.
func (l boardLayout) columnAt(x, y int) int {
	for i, col := range l.columns {
		if x >= col.x0 && x <= col.x1 && y >= col.y0 && y <= col.y1 {
			return i
		}
	}
	return -1
}

// cardIndexAt returns the position of the card under the pointer within
// its column, or -1 when the pointer is not on a card.
func (l boardLayout) cardIndexAt(x, y int) (listID state.ID, index int) {
	idx := make(map[state.ID]int)
	for _, c := range l.cards {
		i := idx[c.listID]
		idx[c.listID] = i + 1
		if x >= c.x0 && x <= c.x1 && y >= c.y0 && y <= c.y1 {
			return c.listID, i
		}
	}
	return "", -1
}
