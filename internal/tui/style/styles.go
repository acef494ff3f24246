package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// 標題樣式
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// 分隔線
	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// 狀態欄
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			Background(BgMedium).
			Padding(0, 1)

	// 幫助樣式
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// 錯誤樣式
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// 成功樣式
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	// 警告樣式
	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// 信息樣式
	InfoStyle = lipgloss.NewStyle().
			Foreground(Info)

	// 新消息提示徽章
	UnseenBadgeStyle = lipgloss.NewStyle().
				Foreground(BgMedium).
				Background(Notice).
				Padding(0, 1).
				Bold(true)

	// 已滾動徽章
	ScrolledBadgeStyle = lipgloss.NewStyle().
				Foreground(Text).
				Background(Secondary).
				Padding(0, 1)

	// 空日誌提示
	EmptyStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(1, 2)
)
