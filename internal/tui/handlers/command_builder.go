package handlers

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/pinlog"
	"github.com/Yat-Muk/chatpins/internal/tui/msg"
	"github.com/Yat-Muk/chatpins/internal/tui/state"
)

// 命令超時
const (
	openTimeout   = 10 * time.Second
	actionTimeout = 5 * time.Second
)

// CommandBuilder 把引擎與服務調用包裝為異步命令
type CommandBuilder struct {
	log      *zap.Logger
	stateMgr *state.Manager
	engine   *pinlog.Engine
	model    *pinlog.Model
	pins     PinActions
}

// NewCommandBuilder 構造函數
func NewCommandBuilder(cfg *Config) *CommandBuilder {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandBuilder{
		log:      log,
		stateMgr: cfg.StateMgr,
		engine:   cfg.Engine,
		model:    cfg.Model,
		pins:     cfg.Pins,
	}
}

// ========================================
// 引擎狀態
// ========================================

// Snapshot 讀取引擎當前狀態
func (b *CommandBuilder) Snapshot() state.LogSnapshot {
	return state.LogSnapshot{
		Content:      b.engine.Content(),
		ScrollTop:    b.engine.ScrollTop(),
		AtBottom:     b.engine.IsAtBottom(),
		Loading:      b.engine.Loading(),
		Pinned:       b.pinnedCount(),
		Materialized: b.engine.Materialized(),
	}
}

// Sync 把引擎狀態同步到界面
func (b *CommandBuilder) Sync() {
	b.stateMgr.Log().Sync(b.Snapshot())
}

func (b *CommandBuilder) pinnedCount() int {
	if b.model == nil {
		return b.engine.Materialized()
	}
	n := 0
	for _, it := range b.model.Items() {
		if it.IsVisible() {
			n++
		}
	}
	return n
}

// ========================================
// 日誌命令
// ========================================

// OpenCmd 首次渲染
func (b *CommandBuilder) OpenCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()

		err := b.engine.Open(ctx)
		if err != nil {
			b.log.Error("打開置頂日誌失敗", zap.Error(err))
		}
		return msg.OpenedMsg{Err: err}
	}
}

// ListenCmd 等待下一條後台消息
func (b *CommandBuilder) ListenCmd() tea.Cmd {
	inbox := b.stateMgr.Inbox()
	return func() tea.Msg {
		return <-inbox
	}
}

// AwaitLoadCmd 等待滾動觸發的批次加載完成
// ch 為 nil 時表示沒有觸發加載。
func (b *CommandBuilder) AwaitLoadCmd(ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return msg.BatchLoadedMsg{Err: <-ch}
	}
}

// ScrollToBottomCmd 跳到最新消息
func (b *CommandBuilder) ScrollToBottomCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return msg.ScrolledMsg{Err: b.engine.ScrollToBottom(ctx, pinlog.ScrollOptions{})}
	}
}

// ToggleSectionCmd 展開或收起可視區頂部消息的擲骰明細
func (b *CommandBuilder) ToggleSectionCmd() tea.Cmd {
	id, ok := b.engine.TopVisible()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return msg.SectionToggledMsg{ID: id, Err: b.engine.ToggleSection(ctx, id, 0)}
	}
}

// ========================================
// 置頂操作
// ========================================

// UnpinCmd 取消可視區頂部消息的置頂
func (b *CommandBuilder) UnpinCmd() tea.Cmd {
	id, ok := b.engine.TopVisible()
	if !ok || b.pins == nil {
		return nil
	}
	actor := b.stateMgr.Viewer()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		_, err := b.pins.Unpin(ctx, actor, id)
		if err != nil {
			b.log.Warn("取消置頂失敗", zap.String("id", id), zap.Error(err))
		}
		return msg.PinResultMsg{ID: id, Pinned: err != nil, Err: err}
	}
}

// FlushCmd 清空非置頂消息
func (b *CommandBuilder) FlushCmd() tea.Cmd {
	if b.pins == nil {
		return nil
	}
	actor := b.stateMgr.Viewer()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		n, err := b.pins.FlushExceptPins(ctx, actor)
		return msg.FlushResultMsg{Deleted: n, Err: err}
	}
}

// TickCmd 定時刷新相對時間
func (b *CommandBuilder) TickCmd() tea.Cmd {
	return tea.Tick(b.stateMgr.Config().TimestampRefresh(), func(t time.Time) tea.Msg {
		return msg.TickMsg(t)
	})
}
