package pinlog

import (
	"context"
	"fmt"
)

// EventKind 宿主生命週期事件類型
type EventKind int

const (
	EventCreated EventKind = iota
	EventUpdated
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event 宿主事件，轉換為對隊列的命令提交
type Event struct {
	Kind EventKind
	Item Item
	// ID 刪除事件只需要 id
	ID string
}

// Dispatch 將事件作為命令提交到隊列，立即返回
// 返回的 channel 在命令執行結束後收到結果。
func (e *Engine) Dispatch(ctx context.Context, ev Event) <-chan error {
	switch ev.Kind {
	case EventCreated:
		if ev.Item == nil || !ev.Item.IsVisible() || !e.model.IsMember(ev.Item) {
			return done(nil)
		}
		return e.queue.Add(ctx, func(ctx context.Context) error {
			return e.postOne(ctx, ev.Item, PostOptions{Notify: true})
		})

	case EventUpdated:
		if ev.Item == nil {
			return done(nil)
		}
		// 不可見或已不屬於該日誌的條目從視圖中移除
		if !ev.Item.IsVisible() || !e.model.IsMember(ev.Item) {
			id := ev.Item.ItemID()
			return e.queue.Add(ctx, func(context.Context) error {
				e.deleteItem(id)
				return nil
			})
		}
		return e.queue.Add(ctx, func(ctx context.Context) error {
			return e.updateItem(ctx, ev.Item)
		})

	case EventDeleted:
		id := ev.ID
		if id == "" && ev.Item != nil {
			id = ev.Item.ItemID()
		}
		return e.queue.Add(ctx, func(context.Context) error {
			e.deleteItem(id)
			return nil
		})
	}
	return done(fmt.Errorf("未知事件類型: %s", ev.Kind))
}

func done(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	return ch
}
