package state

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// LogSnapshot 引擎狀態快照，由命令層在界面協程中讀取
type LogSnapshot struct {
	Content      string
	ScrollTop    int
	AtBottom     bool
	Loading      bool
	Pinned       int
	Materialized int
}

// LogState 置頂日誌狀態
type LogState struct {
	// Viewport 顯示引擎物化的內容，偏移與引擎保持一致
	Viewport viewport.Model
	Ready    bool

	AtBottom     bool
	Loading      bool
	Pinned       int
	Materialized int

	// Unseen 視圖未跟隨時追加到底部的新消息數
	Unseen     int
	LastUnseen string
}

func NewLogState() *LogState {
	return &LogState{
		Viewport: viewport.New(80, 19),
		AtBottom: true,
	}
}

// SetSize 調整視口尺寸
func (s *LogState) SetSize(width, height int) {
	s.Viewport.Width = width
	s.Viewport.Height = height
}

// Sync 用引擎快照刷新視口
func (s *LogState) Sync(snap LogSnapshot) {
	s.Viewport.SetContent(snap.Content)
	s.Viewport.SetYOffset(snap.ScrollTop)

	s.AtBottom = snap.AtBottom
	s.Loading = snap.Loading
	s.Pinned = snap.Pinned
	s.Materialized = snap.Materialized
	if s.AtBottom {
		s.Unseen = 0
		s.LastUnseen = ""
	}
}

// MarkUnseen 記錄一條未看到的新消息
func (s *LogState) MarkUnseen(id string) {
	s.Unseen++
	s.LastUnseen = id
}
