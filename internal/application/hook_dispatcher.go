package application

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/infra/chatstore"
	"github.com/Yat-Muk/chatpins/internal/pinlog"
)

// EventSource 消息事件源
type EventSource interface {
	Subscribe(buffer int) (<-chan chatstore.Event, func())
}

// LogView 接收生命週期事件的日誌視圖
type LogView interface {
	Dispatch(ctx context.Context, ev pinlog.Event) <-chan error
}

// HookDispatcher 將存儲事件轉發到置頂日誌引擎
// 事件按到達順序提交，由引擎隊列串行執行；失敗只記錄日誌。
type HookDispatcher struct {
	source EventSource
	view   LogView
	entry  func(*chat.Message) pinlog.Item
	logger *zap.Logger

	// OnApplied 每個事件執行結束後回調 (用於刷新界面)
	OnApplied func(ev pinlog.Event, err error)

	subOnce sync.Once
	events  <-chan chatstore.Event
	cancel  func()
	wg      sync.WaitGroup
}

// NewHookDispatcher 創建事件分發器
// entry 將消息包裝為當前查看者視角的條目。
func NewHookDispatcher(
	source EventSource,
	view LogView,
	entry func(*chat.Message) pinlog.Item,
	logger *zap.Logger,
) *HookDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HookDispatcher{
		source: source,
		view:   view,
		entry:  entry,
		logger: logger.Named("hooks"),
	}
}

// Subscribe 訂閱事件源，可重複調用
// 在首次渲染前調用，保證渲染期間到達的事件不會丟失。
func (d *HookDispatcher) Subscribe() {
	d.subOnce.Do(func() {
		d.events, d.cancel = d.source.Subscribe(chatstore.DefaultEventBuffer)
	})
}

// Run 分發事件，直到 ctx 結束或事件源關閉
func (d *HookDispatcher) Run(ctx context.Context) error {
	d.Subscribe()
	events := d.events
	defer func() {
		d.cancel()
		d.wg.Wait()
	}()

	d.logger.Debug("開始分發消息事件")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				d.logger.Debug("事件源已關閉")
				return nil
			}
			d.dispatch(ctx, ev)
		}
	}
}

func (d *HookDispatcher) dispatch(ctx context.Context, ev chatstore.Event) {
	lev, ok := d.translate(ev)
	if !ok {
		return
	}

	result := d.view.Dispatch(ctx, lev)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := <-result
		if err != nil {
			d.logger.Warn("日誌視圖處理事件失敗",
				zap.String("kind", ev.Kind.String()),
				zap.String("id", ev.ID()),
				zap.Error(err),
			)
		}
		if d.OnApplied != nil {
			d.OnApplied(lev, err)
		}
	}()
}

// translate 將存儲事件轉換為引擎事件
func (d *HookDispatcher) translate(ev chatstore.Event) (pinlog.Event, bool) {
	switch ev.Kind {
	case chatstore.Created:
		if ev.Message == nil {
			return pinlog.Event{}, false
		}
		return pinlog.Event{Kind: pinlog.EventCreated, Item: d.entry(ev.Message)}, true
	case chatstore.Updated:
		if ev.Message == nil {
			return pinlog.Event{}, false
		}
		return pinlog.Event{Kind: pinlog.EventUpdated, Item: d.entry(ev.Message)}, true
	case chatstore.Deleted:
		return pinlog.Event{Kind: pinlog.EventDeleted, ID: ev.ID()}, true
	default:
		d.logger.Warn("未知事件類型", zap.String("kind", ev.Kind.String()))
		return pinlog.Event{}, false
	}
}
