package chatstore

import (
	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/pinlog"
)

// ViewerCollection 以某個查看者視角把存儲適配為日誌集合
type ViewerCollection struct {
	store  *Store
	viewer *chat.User
}

// NewViewerCollection 創建集合適配器
func NewViewerCollection(store *Store, viewer *chat.User) *ViewerCollection {
	return &ViewerCollection{store: store, viewer: viewer}
}

// Contents 按到達順序返回全部消息條目
func (c *ViewerCollection) Contents() []pinlog.Item {
	msgs := c.store.snapshot()
	items := make([]pinlog.Item, len(msgs))
	for i, m := range msgs {
		items[i] = chat.NewEntry(m, c.viewer)
	}
	return items
}

// Entry 將單條消息包裝為條目
func (c *ViewerCollection) Entry(m *chat.Message) pinlog.Item {
	return chat.NewEntry(m, c.viewer)
}

// Viewer 當前查看者
func (c *ViewerCollection) Viewer() *chat.User {
	return c.viewer
}
