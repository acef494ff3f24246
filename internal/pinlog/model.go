// Package pinlog 置頂日誌視圖的增量渲染引擎
//
// 引擎只物化（渲染）成員序列中最新的一段連續後綴，用戶向上滾動接近頂部時
// 再按批次向更早的條目擴展。所有修改與渲染操作都經由單並發隊列串行執行，
// 以保證書籤（最舊已物化條目）與已物化集合在併發事件下保持一致。
package pinlog

import "time"

// Item 日誌條目 (由宿主提供，引擎只讀)
type Item interface {
	ItemID() string
	ItemTime() time.Time
	// IsVisible 當前查看者是否可見
	IsVisible() bool
	AuthorID() string
}

// Collection 宿主的完整條目集合，按到達順序排列（最舊在前）
type Collection interface {
	Contents() []Item
}

// Predicate 成員判斷函數 (例如 "是否已置頂")
type Predicate func(Item) bool

// Model 經過成員過濾的有序視圖
// 每次調用都從宿主集合重新計算，從不跨事件緩存。
type Model struct {
	src      Collection
	isMember Predicate
}

// NewModel 創建日誌模型，isMember 為 nil 時接受所有條目
func NewModel(src Collection, isMember Predicate) *Model {
	return &Model{
		src:      src,
		isMember: isMember,
	}
}

// Items 返回當前滿足成員條件的條目
func (m *Model) Items() []Item {
	if m == nil || m.src == nil {
		return nil
	}
	all := m.src.Contents()
	items := make([]Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if m.isMember == nil || m.isMember(it) {
			items = append(items, it)
		}
	}
	return items
}

// IsMember 判斷單個條目是否屬於該日誌
func (m *Model) IsMember(it Item) bool {
	if m == nil || it == nil {
		return false
	}
	return m.isMember == nil || m.isMember(it)
}

// indexOf 查找 id 在序列中的位置，不存在返回 -1
func indexOf(items []Item, id string) int {
	if id == "" {
		return -1
	}
	for i, it := range items {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}
