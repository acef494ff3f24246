package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextColor 返回一個使用指定前景色的 Render 函數。
// 這樣上層可以寫：style.TextColor(style.Info)("加載中")
func TextColor(c lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(c)
	return func(str string) string {
		return s.Render(str)
	}
}

// InfoText 使用 Info 顏色顯示文字。
func InfoText(s string) string {
	return TextColor(Info)(s)
}

// SuccessText 使用 Success 顏色顯示文字。
func SuccessText(s string) string {
	return TextColor(Success)(s)
}

// WarningText 使用 Warning 顏色顯示文字。
func WarningText(s string) string {
	return TextColor(Warning)(s)
}

// ErrorText 使用 Error 顏色顯示文字。
func ErrorText(s string) string {
	return TextColor(Error)(s)
}

// MutedText 使用 Muted 顏色顯示文字。
func MutedText(s string) string {
	return TextColor(Muted)(s)
}

// VisualLength 計算字符串在等寬終端中的可視寬度 (忽略 ANSI 序列)。
func VisualLength(s string) int {
	return lipgloss.Width(s)
}

// Fit 將純文本截斷或補齊到指定寬度
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "…")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// Divider 指定寬度的分隔線
func Divider(width int) string {
	if width <= 0 {
		width = 1
	}
	return DividerStyle.Render(strings.Repeat("─", width))
}
