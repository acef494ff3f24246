package handlers

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yat-Muk/chatpins/internal/tui/state"
)

// wheelStep 鼠標滾輪每格滾動的行數
const wheelStep = 3

// KeyHandler 核心處理器：按鍵與鼠標輸入轉為引擎操作
type KeyHandler struct {
	stateMgr   *state.Manager
	cmdBuilder *CommandBuilder
	keys       KeyMap
}

func NewKeyHandler(stateMgr *state.Manager, cmdBuilder *CommandBuilder) *KeyHandler {
	return &KeyHandler{
		stateMgr:   stateMgr,
		cmdBuilder: cmdBuilder,
		keys:       DefaultKeyMap(),
	}
}

// Keys 當前按鍵綁定
func (h *KeyHandler) Keys() KeyMap {
	return h.keys
}

// Handle 處理全局按鍵
func (h *KeyHandler) Handle(m tea.KeyMsg) tea.Cmd {
	ui := h.stateMgr.UI()
	engine := h.cmdBuilder.engine

	switch {
	case key.Matches(m, h.keys.Quit):
		return tea.Quit

	case key.Matches(m, h.keys.Help):
		ui.ShowHelp = !ui.ShowHelp
		return h.resize()

	case !h.stateMgr.Log().Ready:
		// 首次渲染完成前只響應退出與幫助
		return nil

	case key.Matches(m, h.keys.Up):
		return h.scrolled(engine.ScrollBy(-1))
	case key.Matches(m, h.keys.Down):
		return h.scrolled(engine.ScrollBy(1))
	case key.Matches(m, h.keys.PageUp):
		return h.scrolled(engine.ScrollBy(-ui.BodyHeight()))
	case key.Matches(m, h.keys.PageDown):
		return h.scrolled(engine.ScrollBy(ui.BodyHeight()))
	case key.Matches(m, h.keys.Top):
		return h.scrolled(engine.ScrollTo(0))

	case key.Matches(m, h.keys.Bottom):
		return h.cmdBuilder.ScrollToBottomCmd()

	case key.Matches(m, h.keys.Toggle):
		return h.cmdBuilder.ToggleSectionCmd()

	case key.Matches(m, h.keys.Unpin):
		return h.cmdBuilder.UnpinCmd()

	case key.Matches(m, h.keys.Flush):
		if v := h.stateMgr.Viewer(); v == nil || !v.IsGM() {
			ui.SetStatus(state.StatusWarn, "只有主持人可以清空聊天記錄")
			return nil
		}
		ui.SetStatus(state.StatusInfo, "正在清空非置頂消息...")
		return h.cmdBuilder.FlushCmd()
	}
	return nil
}

// HandleMouse 鼠標滾輪滾動
func (h *KeyHandler) HandleMouse(m tea.MouseMsg) tea.Cmd {
	if !h.stateMgr.Log().Ready || m.Action != tea.MouseActionPress {
		return nil
	}
	switch m.Button {
	case tea.MouseButtonWheelUp:
		return h.scrolled(h.cmdBuilder.engine.ScrollBy(-wheelStep))
	case tea.MouseButtonWheelDown:
		return h.scrolled(h.cmdBuilder.engine.ScrollBy(wheelStep))
	}
	return nil
}

// HandleResize 窗口尺寸變化
func (h *KeyHandler) HandleResize(m tea.WindowSizeMsg) tea.Cmd {
	h.stateMgr.UI().UpdateSize(m.Width, m.Height)
	return h.resize()
}

func (h *KeyHandler) resize() tea.Cmd {
	ui := h.stateMgr.UI()
	body := ui.BodyHeight()
	h.stateMgr.Log().SetSize(ui.Width, body)
	return h.scrolled(h.cmdBuilder.engine.Resize(ui.Width, body))
}

// scrolled 同步滾動後的狀態，必要時等待批次加載
func (h *KeyHandler) scrolled(load <-chan error) tea.Cmd {
	h.cmdBuilder.Sync()
	return h.cmdBuilder.AwaitLoadCmd(load)
}
