package model

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/tui/handlers"
	"github.com/Yat-Muk/chatpins/internal/tui/msg"
	"github.com/Yat-Muk/chatpins/internal/tui/state"
	"github.com/Yat-Muk/chatpins/internal/tui/style"
)

// Router 事件路由器，直接作為 bubbletea 程序的模型
type Router struct {
	stateMgr   *state.Manager
	keyHandler *handlers.KeyHandler
	cmdBuilder *handlers.CommandBuilder
	help       help.Model
	log        *zap.Logger
}

var _ tea.Model = (*Router)(nil)

// NewRouter 創建路由器
func NewRouter(cfg *handlers.Config) *Router {
	cmdBuilder := handlers.NewCommandBuilder(cfg)
	keyHandler := handlers.NewKeyHandler(cfg.StateMgr, cmdBuilder)

	h := help.New()
	h.Styles.ShortKey = style.HelpStyle.Bold(true)
	h.Styles.ShortDesc = style.HelpStyle
	h.Styles.FullKey = style.HelpStyle.Bold(true)
	h.Styles.FullDesc = style.HelpStyle

	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Router{
		stateMgr:   cfg.StateMgr,
		keyHandler: keyHandler,
		cmdBuilder: cmdBuilder,
		help:       h,
		log:        log,
	}
}

// Init 打開日誌並開始監聽後台消息
func (r *Router) Init() tea.Cmd {
	return tea.Batch(
		r.cmdBuilder.OpenCmd(),
		r.cmdBuilder.ListenCmd(),
		r.cmdBuilder.TickCmd(),
	)
}

// Update 路由一條消息
func (r *Router) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	return r, r.routeMessage(message)
}

// View 渲染整個界面
func (r *Router) View() string {
	r.help.ShowAll = r.stateMgr.UI().ShowHelp
	return r.stateMgr.Render(r.help.View(r.keyHandler.Keys()))
}

// routeMessage 內部路由邏輯
func (r *Router) routeMessage(message tea.Msg) tea.Cmd {
	m := r.stateMgr
	ui := m.UI()

	switch msgType := message.(type) {

	case tea.WindowSizeMsg:
		r.help.Width = msgType.Width
		return r.keyHandler.HandleResize(msgType)

	case tea.KeyMsg:
		return r.keyHandler.Handle(msgType)

	case tea.MouseMsg:
		return r.keyHandler.HandleMouse(msgType)

	case msg.TickMsg:
		// 時間戳在讀取內容時格式化，重新同步即可刷新相對時間
		if m.Log().Ready {
			r.cmdBuilder.Sync()
		}
		return r.cmdBuilder.TickCmd()

	// ========================================
	// 引擎結果
	// ========================================

	case msg.OpenedMsg:
		if msgType.Err != nil {
			ui.SetStatus(state.StatusError, fmt.Sprintf("置頂日誌加載失敗：%v", msgType.Err))
			return nil
		}
		m.Log().Ready = true
		r.cmdBuilder.Sync()
		return nil

	case msg.LogChangedMsg:
		if msgType.Err != nil {
			ui.SetStatus(state.StatusWarn, fmt.Sprintf("消息 %s 更新失敗", msgType.ID))
		}
		r.cmdBuilder.Sync()
		return r.cmdBuilder.ListenCmd()

	case msg.UnseenMsg:
		m.Log().MarkUnseen(msgType.ID)
		r.cmdBuilder.Sync()
		return r.cmdBuilder.ListenCmd()

	case msg.BatchLoadedMsg:
		if msgType.Err != nil {
			ui.SetStatus(state.StatusError, fmt.Sprintf("加載更早的消息失敗：%v", msgType.Err))
		}
		r.cmdBuilder.Sync()
		return nil

	case msg.ScrolledMsg:
		if msgType.Err != nil {
			r.log.Warn("滾動到底部失敗", zap.Error(msgType.Err))
		}
		r.cmdBuilder.Sync()
		return nil

	case msg.SectionToggledMsg:
		if msgType.Err != nil {
			r.log.Warn("切換擲骰明細失敗", zap.String("id", msgType.ID), zap.Error(msgType.Err))
		}
		r.cmdBuilder.Sync()
		return nil

	// ========================================
	// 服務結果
	// ========================================

	case msg.PinResultMsg:
		if msgType.Err != nil {
			ui.SetStatus(state.StatusError, fmt.Sprintf("取消置頂失敗：%v", msgType.Err))
			return nil
		}
		ui.SetStatus(state.StatusSuccess, "已取消置頂")
		return nil

	case msg.FlushResultMsg:
		if msgType.Err != nil {
			ui.SetStatus(state.StatusError, fmt.Sprintf("清空失敗：%v", msgType.Err))
			return nil
		}
		ui.SetStatus(state.StatusSuccess, fmt.Sprintf("已清空 %d 條消息", msgType.Deleted))
		return nil
	}

	return nil
}
