package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardwalk-tui/boardwalk/internal/drag"
	"github.com/boardwalk-tui/boardwalk/internal/prefs"
	"github.com/boardwalk-tui/boardwalk/internal/state"
)

// Update routes bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case boardsLoadedMsg:
		m.refresh()
		if msg.err != nil {
			m.setStatus(statusForError("load boards", msg.err), true)
			return m, nil
		}
		if m.tree.ActiveBoard != "" {
			return m, m.loadBoardCmd(m.tree.ActiveBoard)
		}
		return m, nil

	case listsLoadedMsg:
		m.refresh()
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				return m, nil
			}
			m.setStatus(statusForError("load lists", msg.err), true)
			return m, nil
		}
		return m, m.loadCardsForBoard(msg.boardID)

	case cardsLoadedMsg:
		m.refresh()
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setStatus(statusForError("load cards", msg.err), true)
		}
		return m, nil

	case detailLoadedMsg:
		m.refresh()
		if msg.err != nil {
			m.setStatus(statusForError("load card", msg.err), true)
		}
		return m, nil

	case opDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.setStatus(statusForError(msg.op, msg.err), true)
		} else {
			m.setStatus("", false)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// loadCardsForBoard queues a card fetch for every list of boardID that
// has not been loaded yet.
func (m Model) loadCardsForBoard(boardID state.ID) tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.tree.Boards {
		if m.tree.Boards[i].ID != boardID {
			continue
		}
		for _, list := range m.tree.Boards[i].Lists {
			if !list.CardsLoaded {
				cmds = append(cmds, m.loadCardsCmd(list.ID))
			}
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal {
		return m, nil
	}
	m.layout = computeLayout(m.activeBoard(), m.width, m.height, m.sidebarOn)
	switch {
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if m.sidebarOn && msg.X < sidebarWidth {
			return m.sidebarClick(msg.Y)
		}
		if listID, idx := m.layout.cardIndexAt(msg.X, msg.Y); idx >= 0 {
			if col := m.layout.columnAt(msg.X, msg.Y); col >= 0 {
				m.selList = col
			}
			m.selCard = idx
			m.focusPane = focusBoard
			card := m.selectedCard()
			if card != nil {
				m.dragCtl.Start(card.ID, listID)
			}
		} else if col := m.layout.columnAt(msg.X, msg.Y); col >= 0 {
			m.selList = col
			m.focusPane = focusBoard
		}
		return m, nil

	case msg.Action == tea.MouseActionMotion:
		if !m.dragCtl.Dragging() {
			return m, nil
		}
		hit, over := m.layout.hit(msg.X, msg.Y)
		m.dragCtl.Update(hit, over)
		return m, nil

	case msg.Action == tea.MouseActionRelease:
		if !m.dragCtl.Dragging() {
			return m, nil
		}
		mv, ok := m.dragCtl.Drop(m.tree)
		if !ok {
			return m, nil
		}
		return m, m.moveCmd(mv)
	}
	return m, nil
}

func (m Model) sidebarClick(y int) (tea.Model, tea.Cmd) {
	// Board entries start two rows under the header: a workspace line
	// and a separator.
	idx := y - headerRows - 2
	if idx < 0 || idx >= len(m.tree.Boards) {
		return m, nil
	}
	m.sidebarSel = idx
	m.focusPane = focusSidebar
	return m.activateBoard(m.tree.Boards[idx].ID)
}

func (m Model) activateBoard(boardID state.ID) (tea.Model, tea.Cmd) {
	if err := m.store.SetActiveBoard(boardID); err != nil {
		m.setStatus(statusForError("switch board", err), true)
		return m, nil
	}
	m.refresh()
	m.selList, m.selCard = 0, 0
	m.focusPane = focusBoard
	return m, m.loadBoardCmd(boardID)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAddList, modeAddCard, modeRenameList, modeNewBoard, modeNewWorkspace, modePopupComment, modePopupTitle:
		return m.handleInputKey(msg)
	case modePopupDescription:
		return m.handleDescKey(msg)
	case modeHelp:
		m.mode = modeNormal
		return m, nil
	case modeCardPopup:
		return m.handlePopupKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeInput(), nil
	case "enter":
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) closeInput() Model {
	m.input.Reset()
	m.input.Blur()
	if m.mode == modePopupComment || m.mode == modePopupTitle {
		m.mode = modeCardPopup
	} else {
		m.mode = modeNormal
	}
	return m
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	mode := m.mode
	next := m.closeInput()
	if text == "" {
		return next, nil
	}
	store, board := next.store, next.activeBoard()
	switch mode {
	case modeAddList:
		if board == nil {
			return next, nil
		}
		boardID := board.ID
		return next, next.opCmd("add list", func(ctx context.Context) error {
			_, err := store.CreateList(ctx, boardID, text)
			return err
		})
	case modeAddCard:
		listID := next.addToList
		return next, next.opCmd("add card", func(ctx context.Context) error {
			_, err := store.CreateCard(ctx, listID, text, -1, "")
			return err
		})
	case modeRenameList:
		listID := next.renameList
		return next, next.opCmd("rename list", func(ctx context.Context) error {
			return store.UpdateListTitle(ctx, listID, text)
		})
	case modeNewBoard:
		return next, next.opCmd("create board", func(ctx context.Context) error {
			_, err := store.CreateBoard(ctx, text, "")
			return err
		})
	case modeNewWorkspace:
		userID, ok := next.keychain.UserID()
		if !ok {
			next.setStatus("cannot read user id from session token", true)
			return next, nil
		}
		return next, next.opCmd("create workspace", func(ctx context.Context) error {
			_, err := store.CreateWorkspace(ctx, text, "", userID)
			return err
		})
	case modePopupComment:
		cardID := next.popupCard
		return next, next.opCmd("add comment", func(ctx context.Context) error {
			_, err := store.AddComment(ctx, cardID, text)
			return err
		})
	case modePopupTitle:
		card := next.popupCardRef()
		if card == nil {
			return next, nil
		}
		cardID, desc := card.ID, card.Description
		return next, next.opCmd("rename card", func(ctx context.Context) error {
			return store.UpdateCard(ctx, cardID, text, desc)
		})
	}
	return next, nil
}

func (m Model) handleDescKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.descInput.Blur()
		m.mode = modeCardPopup
		return m, nil
	case "ctrl+s":
		card := m.popupCardRef()
		text := m.descInput.Value()
		m.descInput.Blur()
		m.mode = modeCardPopup
		if card == nil {
			return m, nil
		}
		cardID, title := card.ID, card.Title
		store := m.store
		return m, m.opCmd("update description", func(ctx context.Context) error {
			return store.UpdateCard(ctx, cardID, title, text)
		})
	}
	var cmd tea.Cmd
	m.descInput, cmd = m.descInput.Update(msg)
	return m, cmd
}

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	card := m.popupCardRef()
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNormal
		m.popupCard = ""
		m.popupSel = 0
		return m, nil
	case "j", "down":
		if card != nil && m.popupSel < len(card.Comments)-1 {
			m.popupSel++
		}
		return m, nil
	case "k", "up":
		if m.popupSel > 0 {
			m.popupSel--
		}
		return m, nil
	case "c":
		m.mode = modePopupComment
		m.input.Placeholder = "comment"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "e":
		if card == nil {
			return m, nil
		}
		m.mode = modePopupTitle
		m.input.Placeholder = "card title"
		m.input.SetValue(card.Title)
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink
	case "d":
		if card == nil {
			return m, nil
		}
		m.mode = modePopupDescription
		m.descInput.SetValue(card.Description)
		m.descInput.Focus()
		return m, textarea.Blink
	case "x":
		if card == nil || m.popupSel >= len(card.Comments) {
			return m, nil
		}
		cardID := card.ID
		commentID := card.Comments[m.popupSel].ID
		store := m.store
		return m, m.opCmd("delete comment", func(ctx context.Context) error {
			return store.DeleteComment(ctx, cardID, commentID)
		})
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dragCtl.Dragging() {
		return m.handleDragKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.mode = modeHelp
		return m, nil
	case "tab":
		if m.focusPane == focusBoard && m.sidebarOn {
			m.focusPane = focusSidebar
		} else {
			m.focusPane = focusBoard
		}
		return m, nil
	case "b":
		m.sidebarOn = !m.sidebarOn
		if !m.sidebarOn {
			m.focusPane = focusBoard
		}
		m.prefs.SidebarCollapsed = !m.sidebarOn
		m.savePrefs()
		return m, nil
	case "t":
		name := NextTheme(m.prefs.Theme)
		m.prefs.Theme = name
		m.theme = GetTheme(name)
		m.styles = m.theme.Styles()
		m.savePrefs()
		return m, nil
	case "R":
		return m, m.loadSessionCmd()
	}
	if m.focusPane == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleBoardKey(msg)
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.setStatus("could not save preferences: "+err.Error(), true)
	}
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.sidebarSel < len(m.tree.Boards)-1 {
			m.sidebarSel++
		}
	case "k", "up":
		if m.sidebarSel > 0 {
			m.sidebarSel--
		}
	case "enter":
		if m.sidebarSel < len(m.tree.Boards) {
			return m.activateBoard(m.tree.Boards[m.sidebarSel].ID)
		}
	case "n":
		m.mode = modeNewBoard
		m.input.Placeholder = "board name"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "w":
		return m.cycleWorkspace()
	case "W":
		m.mode = modeNewWorkspace
		m.input.Placeholder = "workspace name"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) cycleWorkspace() (tea.Model, tea.Cmd) {
	if len(m.tree.Workspaces) == 0 {
		return m, nil
	}
	next := 0
	for i, ws := range m.tree.Workspaces {
		if ws.ID == m.tree.ActiveWorkspace {
			next = (i + 1) % len(m.tree.Workspaces)
			break
		}
	}
	if err := m.store.SetActiveWorkspace(m.tree.Workspaces[next].ID); err != nil {
		m.setStatus(statusForError("switch workspace", err), true)
		return m, nil
	}
	m.refresh()
	m.selList, m.selCard, m.sidebarSel = 0, 0, 0
	if m.tree.ActiveBoard != "" {
		return m, m.loadBoardCmd(m.tree.ActiveBoard)
	}
	return m, nil
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	board := m.activeBoard()
	switch msg.String() {
	case "h", "left":
		if m.selList > 0 {
			m.selList--
			m.selCard = 0
		}
	case "l", "right":
		if board != nil && m.selList < len(board.Lists)-1 {
			m.selList++
			m.selCard = 0
		}
	case "j", "down":
		if list := m.selectedList(); list != nil && m.selCard < len(list.Cards)-1 {
			m.selCard++
		}
	case "k", "up":
		if m.selCard > 0 {
			m.selCard--
		}
	case "enter":
		card := m.selectedCard()
		if card == nil {
			return m, nil
		}
		m.mode = modeCardPopup
		m.popupCard = card.ID
		m.popupSel = 0
		if !card.DetailLoaded {
			return m, m.loadDetailCmd(card.ID)
		}
	case "a":
		list := m.selectedList()
		if list == nil {
			return m, nil
		}
		m.mode = modeAddCard
		m.addToList = list.ID
		m.input.Placeholder = "card title"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "A":
		if board == nil {
			return m, nil
		}
		m.mode = modeAddList
		m.input.Placeholder = "list title"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "r":
		list := m.selectedList()
		if list == nil {
			return m, nil
		}
		m.mode = modeRenameList
		m.renameList = list.ID
		m.input.Placeholder = "list title"
		m.input.SetValue(list.Title)
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink
	case " ":
		card, list := m.selectedCard(), m.selectedList()
		if card == nil || list == nil {
			return m, nil
		}
		if m.dragCtl.Start(card.ID, list.ID) {
			m.kbList = m.selList
			m.kbIdx = m.selCard
			m.dragCtl.Update(m.keyboardHit(), true)
		}
	}
	return m, nil
}

// handleDragKey drives a keyboard drag: J/K move the insertion slot
// within the target list, H/L jump lists, space or enter commits.
func (m Model) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	board := m.activeBoard()
	if board == nil {
		m.dragCtl.Cancel()
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.dragCtl.Cancel()
		return m, nil
	case "J", "j", "down":
		m.kbIdx++
	case "K", "k", "up":
		m.kbIdx--
	case "H", "h", "left":
		if m.kbList > 0 {
			m.kbList--
			m.kbIdx = 0
		}
	case "L", "l", "right":
		if m.kbList < len(board.Lists)-1 {
			m.kbList++
			m.kbIdx = 0
		}
	case " ", "enter":
		mv, ok := m.dragCtl.Drop(m.tree)
		if !ok {
			return m, nil
		}
		return m, m.moveCmd(mv)
	default:
		return m, nil
	}
	m.clampKeyboardTarget()
	m.dragCtl.Update(m.keyboardHit(), true)
	return m, nil
}

func (m *Model) clampKeyboardTarget() {
	board := m.activeBoard()
	if board == nil || len(board.Lists) == 0 {
		return
	}
	if m.kbList < 0 {
		m.kbList = 0
	}
	if m.kbList >= len(board.Lists) {
		m.kbList = len(board.Lists) - 1
	}
	max := len(board.Lists[m.kbList].Cards)
	if m.kbIdx < 0 {
		m.kbIdx = 0
	}
	if m.kbIdx > max {
		m.kbIdx = max
	}
}

// keyboardHit converts the keyboard target slot into a drop hit: before
// the card currently at the slot, or the end of the list when the slot
// is past the last card.
func (m *Model) keyboardHit() drag.Hit {
	board := m.activeBoard()
	if board == nil || m.kbList >= len(board.Lists) {
		return drag.Hit{}
	}
	list := &board.Lists[m.kbList]
	if m.kbIdx >= len(list.Cards) {
		return drag.Hit{ListID: list.ID}
	}
	return drag.Hit{ListID: list.ID, CardID: list.Cards[m.kbIdx].ID, Above: true}
}

func (m Model) moveCmd(mv drag.Move) tea.Cmd {
	store := m.store
	return m.opCmd("move card", func(ctx context.Context) error {
		return store.MoveCard(ctx, mv.CardID, mv.FromListID, mv.ToListID, mv.ToIndex)
	})
}
