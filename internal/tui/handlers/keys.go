package handlers

import "github.com/charmbracelet/bubbles/key"

// KeyMap 置頂日誌的按鍵綁定
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Toggle   key.Binding
	Unpin    key.Binding
	Flush    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap 默認按鍵
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "上滾"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "下滾"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("PgUp", "上翻頁"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", " "),
			key.WithHelp("PgDn", "下翻頁"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home", "頂部"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End", "最新"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "展開擲骰"),
		),
		Unpin: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "取消置頂"),
		),
		Flush: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "清空非置頂"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "幫助"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "退出"),
		),
	}
}

// ShortHelp 實現 help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Bottom, k.Toggle, k.Unpin, k.Help, k.Quit}
}

// FullHelp 實現 help.KeyMap，每列最多三行
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp},
		{k.PageDown, k.Top, k.Bottom},
		{k.Toggle, k.Unpin, k.Flush},
		{k.Help, k.Quit},
	}
}
