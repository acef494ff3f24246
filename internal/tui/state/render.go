package state

import (
	"github.com/Yat-Muk/chatpins/internal/tui/style"
	"github.com/Yat-Muk/chatpins/internal/tui/view"
)

// Render 渲染當前頁面，help 為已渲染的按鍵提示
func (m *Manager) Render(help string) string {
	width := m.ui.Width
	if width == 0 {
		width = 80
	}

	if !m.logState.Ready {
		if m.ui.Status.Type == StatusError {
			return view.RenderError(m.ui.Status.Message, width)
		}
		return view.RenderLoading("加載置頂消息中...", width)
	}

	viewer := "未知"
	if m.viewer != nil {
		viewer = m.viewer.Name
	}

	ls := m.logState
	return view.RenderPinLog(view.PinLogData{
		Version:  m.version,
		Viewer:   viewer,
		Width:    width,
		Height:   m.ui.BodyHeight(),
		Body:     ls.Viewport.View(),
		Pinned:   ls.Pinned,
		Loaded:   ls.Materialized,
		Unseen:   ls.Unseen,
		AtBottom: ls.AtBottom,
		Loading:  ls.Loading,
		Status:   m.renderStatus(),
		Help:     help,
	})
}

func (m *Manager) renderStatus() string {
	s := m.ui.Status
	switch s.Type {
	case StatusSuccess:
		return style.SuccessText("✓ " + s.Message)
	case StatusError:
		return style.ErrorText("✗ " + s.Message)
	case StatusWarn:
		return style.WarningText(s.Message)
	case StatusInfo:
		return style.InfoText(s.Message)
	default:
		return ""
	}
}
