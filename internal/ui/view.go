package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/boardwalk-tui/boardwalk/internal/state"
)

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	header := m.renderHeader()
	var body string
	switch m.mode {
	case modeCardPopup, modePopupComment, modePopupTitle, modePopupDescription:
		body = m.renderPopup()
	case modeHelp:
		body = m.renderHelp()
	default:
		body = m.renderBoard()
	}
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := "boardwalk"
	var crumbs []string
	if ws, ok := m.store.ActiveWorkspace(); ok {
		crumbs = append(crumbs, ws.Name)
	}
	if board := m.activeBoard(); board != nil {
		crumbs = append(crumbs, board.Name)
	}
	left := title
	if len(crumbs) > 0 {
		left += "  " + strings.Join(crumbs, " / ")
	}
	right := "? help"
	if m.dragCtl.Dragging() {
		right = "moving card: J/K/H/L aim, space drops, esc cancels"
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFooter() string {
	switch m.mode {
	case modeAddList, modeAddCard, modeRenameList, modeNewBoard, modeNewWorkspace, modePopupComment, modePopupTitle:
		return m.styles.Footer.Width(m.width).Render(m.input.Placeholder + ": " + m.input.View())
	}
	if m.status != "" {
		line := m.status
		if m.statusErr {
			line = m.styles.DangerText.Render(line)
		}
		return m.styles.Footer.Width(m.width).Render(line)
	}
	hint := "a add card · A add list · enter open · space move · b boards · ? help"
	return m.styles.Footer.Width(m.width).Render(m.styles.MutedText.Render(hint))
}

func (m Model) bodyHeight() int {
	h := m.height - headerRows - footerRows
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) renderBoard() string {
	bodyH := m.bodyHeight()
	board := m.activeBoard()

	var panes []string
	if m.sidebarOn {
		panes = append(panes, m.renderSidebar(bodyH), " ")
	}

	if board == nil {
		empty := m.styles.MutedText.Render("no board yet; press b for the board list, n to create one")
		panes = append(panes, lipgloss.Place(m.boardAreaWidth(), bodyH, lipgloss.Center, lipgloss.Center, empty))
		return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	}

	x := 0
	if m.sidebarOn {
		x = sidebarWidth + 1
	}
	for i := range board.Lists {
		if x+columnWidth > m.width {
			break
		}
		panes = append(panes, m.renderColumn(board, i, bodyH))
		if i < len(board.Lists)-1 {
			panes = append(panes, " ")
		}
		x += columnWidth + columnGap
	}
	if len(board.Lists) == 0 {
		empty := m.styles.MutedText.Render("no lists; press A to add one")
		panes = append(panes, lipgloss.Place(m.boardAreaWidth(), bodyH, lipgloss.Center, lipgloss.Center, empty))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m Model) boardAreaWidth() int {
	w := m.width
	if m.sidebarOn {
		w -= sidebarWidth + 1
	}
	if w < columnWidth {
		w = columnWidth
	}
	return w
}

func (m Model) renderSidebar(height int) string {
	var b strings.Builder
	wsName := "(no workspace)"
	if ws, ok := m.store.ActiveWorkspace(); ok {
		wsName = ws.Name
	}
	b.WriteString(m.styles.AccentText.Bold(true).Render(truncate(wsName, sidebarWidth-2)))
	b.WriteString("\n")
	b.WriteString(m.styles.FaintText.Render(strings.Repeat("─", sidebarWidth-2)))
	b.WriteString("\n")
	for i, board := range m.tree.Boards {
		label := truncate(board.Name, sidebarWidth-4)
		switch {
		case i == m.sidebarSel && m.focusPane == focusSidebar:
			label = m.styles.CardSelected.Render("▸ " + label)
		case board.ID == m.tree.ActiveBoard:
			label = m.styles.AccentText.Render("• " + label)
		default:
			label = m.styles.Text.Render("  " + label)
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	if len(m.tree.Boards) == 0 {
		b.WriteString(m.styles.MutedText.Render("no boards"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.MutedText.Render("n new · w workspace"))
	return m.styles.Sidebar.Width(sidebarWidth).Height(height).Render(b.String())
}

// renderColumn renders one list as a fixed-width block whose row
// positions agree with computeLayout: title, rule, then cards two rows
// high with a one-row gap.
func (m Model) renderColumn(board *state.Board, col, height int) string {
	list := &board.Lists[col]
	focused := m.focusPane == focusBoard && col == m.selList

	innerW := columnWidth - 2

	title := fmt.Sprintf("%s (%d)", truncate(list.Title, innerW-5), len(list.Cards))
	lines := []string{m.styles.ColumnTitle.Render(truncate(title, innerW))}
	rule := strings.Repeat("─", columnWidth)
	if focused {
		lines = append(lines, m.styles.ColumnFocus.Render(rule))
	} else {
		lines = append(lines, m.styles.Column.Render(rule))
	}

	target, hasTarget := m.dragCtl.Target()
	dropEnd := hasTarget && target.ListID == list.ID && target.CardID == ""
	if hasTarget && target.ListID == list.ID && len(list.Cards) > 0 &&
		target.CardID == list.Cards[0].ID && target.Above {
		lines[1] = m.styles.DropMarker.Render(strings.Repeat("▁", columnWidth))
	}

	for i := range list.Cards {
		if len(lines)+cardRows > height {
			break
		}
		card := &list.Cards[i]
		lines = append(lines, m.renderCard(card, focused && i == m.selCard)...)
		gap := " "
		if hasTarget && target.ListID == list.ID {
			if target.CardID == card.ID && !target.Above {
				gap = m.styles.DropMarker.Render(strings.Repeat("▔", columnWidth))
			}
			if i+1 < len(list.Cards) && target.CardID == list.Cards[i+1].ID && target.Above {
				gap = m.styles.DropMarker.Render(strings.Repeat("▁", columnWidth))
			}
		}
		lines = append(lines, gap)
	}
	if dropEnd && len(lines) < height {
		lines = append(lines, m.styles.DropMarker.Render(strings.Repeat("▁", columnWidth)))
	}
	if len(list.Cards) == 0 && !list.CardsLoaded {
		lines = append(lines, m.styles.MutedText.Render(" loading..."))
	}

	block := strings.Join(lines, "\n")
	return lipgloss.NewStyle().Width(columnWidth).Height(height).Render(block)
}

func (m Model) renderCard(card *state.Card, selected bool) []string {
	style := m.styles.Card
	switch {
	case m.dragCtl.CardID() == card.ID:
		style = m.styles.CardDragged
	case selected:
		style = m.styles.CardSelected
	}
	style = style.Width(columnWidth - 2)

	title := truncate(card.Title, columnWidth-4)
	var badges []string
	if card.Description != "" {
		badges = append(badges, "≡")
	}
	if n := len(card.Comments); n > 0 {
		badges = append(badges, fmt.Sprintf("🗨 %d", n))
	}
	if n := len(card.Attachments); n > 0 {
		badges = append(badges, fmt.Sprintf("📎 %d", n))
	}
	if card.ID.Provisional() {
		badges = append(badges, "…syncing")
	}
	badge := strings.Join(badges, "  ")

	return []string{
		" " + style.Render(title),
		" " + style.Render(truncate(badge, columnWidth-4)),
	}
}

func (m Model) renderPopup() string {
	bodyH := m.bodyHeight()
	card := m.popupCardRef()
	if card == nil {
		return lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center,
			m.styles.MutedText.Render("card no longer exists"))
	}

	w := m.width * 2 / 3
	if w > 72 {
		w = 72
	}
	if w < 40 {
		w = 40
	}
	inner := w - 6

	var b strings.Builder
	b.WriteString(m.styles.ColumnTitle.Render(truncate(card.Title, inner)))
	b.WriteString("\n\n")

	if m.mode == modePopupDescription {
		b.WriteString(m.descInput.View())
		b.WriteString("\n")
		b.WriteString(m.styles.MutedText.Render("ctrl+s save · esc discard"))
	} else {
		desc := card.Description
		if desc == "" {
			desc = "(no description)"
		}
		b.WriteString(m.styles.MutedText.Width(inner).Render(desc))
	}
	b.WriteString("\n\n")

	if n := len(card.Attachments); n > 0 {
		b.WriteString(m.styles.InfoText.Render(fmt.Sprintf("📎 %d attachment(s)", n)))
		b.WriteString("\n")
		for _, a := range card.Attachments {
			b.WriteString(m.styles.FaintText.Render("  " + truncate(a.Filename, inner-2)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Text.Bold(true).Render("Comments"))
	b.WriteString("\n")
	if !card.DetailLoaded {
		b.WriteString(m.styles.MutedText.Render("loading..."))
		b.WriteString("\n")
	} else if len(card.Comments) == 0 {
		b.WriteString(m.styles.MutedText.Render("no comments yet"))
		b.WriteString("\n")
	}
	for i, c := range card.Comments {
		author := c.Author
		if author == "" {
			author = "someone"
		}
		line := fmt.Sprintf("%s: %s", author, c.Text)
		if i == m.popupSel && m.mode == modeCardPopup {
			b.WriteString(m.styles.CardSelected.Render(truncate(line, inner)))
		} else {
			b.WriteString(m.styles.Text.Render(truncate(line, inner)))
		}
		b.WriteString("\n")
	}

	switch m.mode {
	case modePopupComment, modePopupTitle:
		b.WriteString("\n")
		b.WriteString(m.input.Placeholder + ": " + m.input.View())
	case modeCardPopup:
		b.WriteString("\n")
		b.WriteString(m.styles.MutedText.Render(popupHelp))
	}

	box := m.styles.Popup.Width(w).Render(b.String())
	return lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.ColumnTitle.Render("Keys"))
	b.WriteString("\n\n")
	for _, e := range helpEntries {
		b.WriteString(m.styles.AccentText.Render(fmt.Sprintf("%-18s", e[0])))
		b.WriteString(m.styles.Text.Render(e[1]))
		b.WriteString("\n")
	}
	box := m.styles.Popup.Render(b.String())
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

// truncate shortens s to at most w cells, appending an ellipsis when it
// had to cut.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
