package style

import "github.com/charmbracelet/lipgloss"

// 配色方案
var (
	FutureGreen = lipgloss.Color("#B2FF00") // 螢光綠 - 成功
	SkyBlue     = lipgloss.Color("#1AAEFC") // 天藍 - 主要強調
	Violet      = lipgloss.Color("#DDAAFF") // 紫羅蘭 - 次要強調/置頂邊框
	Yellow      = lipgloss.Color("#FFDC65") // 明黃 - 置頂標記/提示
	Orange      = lipgloss.Color("#FC7B00") // 橙色 - 新消息提示
	Red         = lipgloss.Color("#FF007F") // 紅色 - 錯誤

	// 文字顏色
	White    = lipgloss.Color("#F3F3F0")
	Gray     = lipgloss.Color("#C0C0C0")
	DarkGray = lipgloss.Color("#8A8783")

	BgMedium = lipgloss.Color("#2a2a2a")
)

// 功能顏色映射
var (
	Primary   = SkyBlue
	Secondary = Violet
	Text      = White
	Subtle    = Gray

	Muted   = DarkGray
	Success = FutureGreen
	Error   = Red
	Warning = Yellow
	Notice  = Orange
	Info    = SkyBlue
)
