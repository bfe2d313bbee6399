package ui

// helpEntries is the content of the help overlay, grouped roughly by
// how often each binding gets used.
var helpEntries = [][2]string{
	{"h/l, left/right", "move between lists"},
	{"j/k, down/up", "move between cards"},
	{"enter", "open card"},
	{"a", "add card to current list"},
	{"A", "add list"},
	{"r", "rename current list"},
	{"space", "pick up / drop card (keyboard drag)"},
	{"J/K", "move picked-up card within list"},
	{"H/L", "move picked-up card across lists"},
	{"esc", "cancel drag, close popup or input"},
	{"b", "toggle board sidebar"},
	{"tab", "switch focus between sidebar and board"},
	{"n", "new board (sidebar focused)"},
	{"w", "cycle workspace"},
	{"W", "new workspace"},
	{"t", "cycle theme"},
	{"R", "refresh from server"},
	{"?", "toggle this help"},
	{"q, ctrl+c", "quit"},
}

var popupHelp = "c comment · d description · e title · j/k select comment · x delete comment · esc close"
