package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit  key.Binding
	Force key.Binding
	Help  key.Binding
	Back  key.Binding

	// Navigation
	Reports  key.Binding
	Settings key.Binding

	// List actions
	Select    key.Binding
	New       key.Binding
	Edit      key.Binding
	View      key.Binding
	Delete    key.Binding
	Duplicate key.Binding
	Refresh   key.Binding

	// Editor actions
	Save       key.Binding
	Preview    key.Binding
	AddItem    key.Binding
	RemoveItem key.Binding
	Load       key.Binding
	Export     key.Binding
	NextField  key.Binding
	PrevField  key.Binding

	// Export formats
	ExportPDF  key.Binding
	ExportPNG  key.Binding
	ExportJSON key.Binding
	ExportXLSX key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Force:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Reports:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reports")),
	Settings:   key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	View:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Duplicate:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "duplicate")),
	Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
	Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Preview:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
	AddItem:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add item")),
	RemoveItem: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "remove item")),
	Load:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "load file")),
	Export:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export")),
	NextField:  key.NewBinding(key.WithKeys("tab", "down", "enter"), key.WithHelp("tab", "next field")),
	PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	ExportPDF:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pdf")),
	ExportPNG:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "png")),
	ExportJSON: key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "json")),
	ExportXLSX: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "xlsx")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
}
