package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardwalk-tui/boardwalk/internal/auth"
	"github.com/boardwalk-tui/boardwalk/internal/drag"
	"github.com/boardwalk-tui/boardwalk/internal/prefs"
	"github.com/boardwalk-tui/boardwalk/internal/state"
)

// mode determines which input surface is active.
type mode int

const (
	modeNormal mode = iota
	modeAddList
	modeAddCard
	modeRenameList
	modeCardPopup
	modePopupComment
	modePopupDescription
	modePopupTitle
	modeNewBoard
	modeNewWorkspace
	modeHelp
)

// focus determines which pane receives navigation keys.
type focus int

const (
	focusBoard focus = iota
	focusSidebar
)

// Options configure the UI runtime.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Keychain  *auth.Keychain
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the bubbletea model for the whole application.
type Model struct {
	ctx      context.Context
	store    *state.Store
	keychain *auth.Keychain

	theme  Theme
	styles Styles

	prefs     prefs.Prefs
	prefsPath string

	width  int
	height int

	// tree is the snapshot the current frame renders from. It is
	// replaced wholesale after every store operation; the UI never
	// mutates it.
	tree state.Tree

	focusPane  focus
	selList    int
	selCard    int
	sidebarSel int
	sidebarOn  bool

	mode      mode
	input     textinput.Model
	descInput textarea.Model

	// popupCard is the card the detail popup shows, tracked by id so a
	// background refresh cannot retarget the popup.
	popupCard  state.ID
	popupSel   int
	renameList state.ID
	addToList  state.ID

	dragCtl drag.Controller
	layout  boardLayout

	// kbList and kbIdx track the keyboard drag target: the column index
	// and insertion slot the picked-up card would land in.
	kbList int
	kbIdx  int

	status    string
	statusErr bool

	// cancelListFetch aborts the in-flight list fetch when the active
	// board changes before it completes.
	cancelListFetch context.CancelFunc

	quitting bool
}

// NewModel builds the initial model.
func NewModel(opts Options) Model {
	theme := GetTheme(opts.Prefs.Theme)

	input := textinput.New()
	input.CharLimit = 120
	input.Width = 40

	desc := textarea.New()
	desc.CharLimit = 2000
	desc.SetWidth(56)
	desc.SetHeight(6)

	return Model{
		ctx:       opts.Context,
		store:     opts.Store,
		keychain:  opts.Keychain,
		theme:     theme,
		styles:    theme.Styles(),
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		sidebarOn: !opts.Prefs.SidebarCollapsed,
		input:     input,
		descInput: desc,
	}
}

// Init kicks off the initial data load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadSessionCmd())
}

// activeBoard returns the board the cursor operates on.
func (m *Model) activeBoard() *state.Board {
	for i := range m.tree.Boards {
		if m.tree.Boards[i].ID == m.tree.ActiveBoard {
			return &m.tree.Boards[i]
		}
	}
	return nil
}

// selectedList returns the list under the cursor.
func (m *Model) selectedList() *state.List {
	board := m.activeBoard()
	if board == nil || m.selList < 0 || m.selList >= len(board.Lists) {
		return nil
	}
	return &board.Lists[m.selList]
}

// selectedCard returns the card under the cursor.
func (m *Model) selectedCard() *state.Card {
	list := m.selectedList()
	if list == nil || m.selCard < 0 || m.selCard >= len(list.Cards) {
		return nil
	}
	return &list.Cards[m.selCard]
}

// clampCursor keeps the cursor inside the tree after a refresh.
func (m *Model) clampCursor() {
	board := m.activeBoard()
	if board == nil || len(board.Lists) == 0 {
		m.selList, m.selCard = 0, 0
		return
	}
	if m.selList >= len(board.Lists) {
		m.selList = len(board.Lists) - 1
	}
	if m.selList < 0 {
		m.selList = 0
	}
	cards := board.Lists[m.selList].Cards
	if m.selCard >= len(cards) {
		m.selCard = len(cards) - 1
	}
	if m.selCard < 0 {
		m.selCard = 0
	}
	if m.sidebarSel >= len(m.tree.Boards) {
		m.sidebarSel = len(m.tree.Boards) - 1
	}
	if m.sidebarSel < 0 {
		m.sidebarSel = 0
	}
}

// refresh replaces the rendered snapshot with the store's current tree.
func (m *Model) refresh() {
	m.tree = m.store.Snapshot()
	m.clampCursor()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) popupCardRef() *state.Card {
	if m.popupCard == "" {
		return nil
	}
	for bi := range m.tree.Boards {
		for li := range m.tree.Boards[bi].Lists {
			list := &m.tree.Boards[bi].Lists[li]
			for ci := range list.Cards {
				if list.Cards[ci].ID == m.popupCard {
					return &list.Cards[ci]
				}
			}
		}
	}
	return nil
}
