package chat

import "time"

// Entry 以某個查看者視角包裝的消息，供日誌視圖使用
type Entry struct {
	*Message
	Viewer *User
}

// NewEntry 創建條目
func NewEntry(m *Message, viewer *User) *Entry {
	return &Entry{Message: m, Viewer: viewer}
}

func (e *Entry) ItemID() string      { return e.ID }
func (e *Entry) ItemTime() time.Time { return e.Timestamp }
func (e *Entry) IsVisible() bool     { return e.VisibleTo(e.Viewer) }
func (e *Entry) AuthorID() string    { return e.Author }

// IsPinnedEntry 置頂日誌的成員判斷
func IsPinnedEntry(it any) bool {
	e, ok := it.(*Entry)
	return ok && e.IsPinned()
}
