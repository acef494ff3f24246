package view

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/chatpins/internal/tui/style"
)

// renderHeader 渲染頁面頭部：標題 + 版本 + 分隔線
func renderHeader(title, version string, width int) string {
	left := style.TitleStyle.Render("📌 " + title)
	right := style.MutedText(version)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right

	return lipgloss.JoinVertical(lipgloss.Left, line, style.Divider(width))
}

// RenderLoading 渲染加載頁面
func RenderLoading(message string, width int) string {
	header := renderHeader("置頂消息", "", width)
	body := style.EmptyStyle.Render(style.InfoText("⏳ " + message))
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// RenderError 渲染錯誤頁面
func RenderError(errMsg string, width int) string {
	header := renderHeader("錯誤", "", width)
	errorText := style.ErrorStyle.Render(fmt.Sprintf("✗ %s", errMsg))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", errorText, "", style.MutedText("按 q 退出"))
}
