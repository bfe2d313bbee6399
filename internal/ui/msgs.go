package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardwalk-tui/boardwalk/internal/remote"
	"github.com/boardwalk-tui/boardwalk/internal/state"
)

// opDoneMsg reports the outcome of any store operation. The payload is
// intentionally thin: the store already holds the authoritative tree,
// so the UI only needs to know whether to show an error and re-snapshot.
type opDoneMsg struct {
	op  string
	err error
}

// boardsLoadedMsg fires after the initial boards and workspaces fetch.
type boardsLoadedMsg struct {
	err error
}

// listsLoadedMsg fires after the active board's lists arrive.
type listsLoadedMsg struct {
	boardID state.ID
	err     error
}

// cardsLoadedMsg fires after one list's cards arrive.
type cardsLoadedMsg struct {
	listID state.ID
	err    error
}

// detailLoadedMsg fires after a card's comments and attachments arrive.
type detailLoadedMsg struct {
	cardID state.ID
	err    error
}

// loadSessionCmd fetches workspaces and boards, then chains into the
// active board's lists.
func (m Model) loadSessionCmd() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := store.FetchWorkspaces(ctx); err != nil {
			return boardsLoadedMsg{err: err}
		}
		return boardsLoadedMsg{err: store.FetchBoards(ctx)}
	}
}

// loadBoardCmd fetches the lists of boardID. The previous in-flight
// fetch, if any, is cancelled first so a stale board cannot clobber the
// one the user switched to.
func (m *Model) loadBoardCmd(boardID state.ID) tea.Cmd {
	if m.cancelListFetch != nil {
		m.cancelListFetch()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelListFetch = cancel
	store := m.store
	return func() tea.Msg {
		return listsLoadedMsg{boardID: boardID, err: store.FetchListsForBoard(ctx, boardID)}
	}
}

// loadCardsCmd fetches one list's cards.
func (m Model) loadCardsCmd(listID state.ID) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return cardsLoadedMsg{listID: listID, err: store.FetchCardsForList(ctx, listID)}
	}
}

// loadDetailCmd fetches a card's comments and attachments.
func (m Model) loadDetailCmd(cardID state.ID) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return detailLoadedMsg{cardID: cardID, err: store.LoadCardDetail(ctx, cardID)}
	}
}

func (m Model) opCmd(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// statusForError renders an operation error for the footer. Auth
// failures get an actionable hint instead of the raw message.
func statusForError(op string, err error) string {
	if remote.IsAuth(err) {
		return "session rejected; run `boardwalk login` to re-authenticate"
	}
	if state.IsValidation(err) || state.IsNotFound(err) {
		return err.Error()
	}
	if remote.IsNetwork(err) {
		return fmt.Sprintf("%s failed: server unreachable (change reverted)", op)
	}
	msg := err.Error()
	if len(msg) > 80 {
		msg = msg[:77] + "..."
	}
	return fmt.Sprintf("%s failed: %s", op, strings.TrimSpace(msg))
}
