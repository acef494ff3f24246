package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/chatpins/internal/tui/style"
)

// PinLogData 置頂日誌頁面所需的數據
type PinLogData struct {
	Version string
	Viewer  string
	Width   int
	Height  int

	// Body 視口渲染結果
	Body     string
	Pinned   int
	Loaded   int
	Unseen   int
	AtBottom bool
	Loading  bool

	// Status 已著色的狀態欄消息
	Status string
	Help   string
}

// RenderPinLog 渲染置頂日誌頁面
func RenderPinLog(d PinLogData) string {
	width := d.Width
	if width <= 0 {
		width = 80
	}

	header := renderHeader(fmt.Sprintf("置頂消息 · %s", d.Viewer), d.Version, width)

	body := d.Body
	if d.Pinned == 0 && !d.Loading {
		body = style.EmptyStyle.Render("還沒有置頂的消息")
	}
	body = lipgloss.NewStyle().Height(d.Height).MaxHeight(d.Height).Render(body)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		style.Divider(width),
		renderStatusBar(d, width),
		d.Help,
	)
}

// renderStatusBar 左側為數量與提示，右側為滾動狀態
func renderStatusBar(d PinLogData, width int) string {
	left := fmt.Sprintf("共 %d 條 · 已加載 %d", d.Pinned, d.Loaded)
	if d.Status != "" {
		left += "  " + d.Status
	}

	var badges []string
	if d.Loading {
		badges = append(badges, style.InfoText("加載中…"))
	}
	if d.Unseen > 0 {
		badges = append(badges, style.UnseenBadgeStyle.Render(fmt.Sprintf("新訊息 %d ↓", d.Unseen)))
	} else if !d.AtBottom {
		badges = append(badges, style.ScrolledBadgeStyle.Render("已滾動"))
	}
	right := strings.Join(badges, " ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return style.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}
