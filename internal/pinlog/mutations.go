package pinlog

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// PostOptions 發布參數
type PostOptions struct {
	// Before 插入到該條目節點之上；為空時按時間戳定位
	Before string
	// Notify 追加到底部但視圖未跟隨時是否觸發被動提示
	Notify bool
}

// ScrollOptions 滾動參數
type ScrollOptions struct {
	// IfAtBottom 僅在視圖已停留在底部時滾動
	IfAtBottom bool
}

// PostOne 物化一個新到達的條目
func (e *Engine) PostOne(ctx context.Context, item Item, opts PostOptions) error {
	if item == nil || !item.IsVisible() {
		return nil
	}
	return e.queue.Do(ctx, func(ctx context.Context) error {
		return e.postOne(ctx, item, opts)
	})
}

// UpdateItem 條目內容變化
func (e *Engine) UpdateItem(ctx context.Context, item Item) error {
	if item == nil {
		return nil
	}
	return e.queue.Do(ctx, func(ctx context.Context) error {
		return e.updateItem(ctx, item)
	})
}

// DeleteItem 移除條目
func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	return e.queue.Do(ctx, func(ctx context.Context) error {
		e.deleteItem(id)
		return nil
	})
}

// ScrollToBottom 滾動到最新內容
func (e *Engine) ScrollToBottom(ctx context.Context, opts ScrollOptions) error {
	return e.queue.Do(ctx, func(ctx context.Context) error {
		if e.view.Closed() {
			return nil
		}
		if opts.IfAtBottom && !e.scroll.IsAtBottom() {
			return nil
		}
		e.scrollBottom()
		return nil
	})
}

// ToggleSection 切換節點內某個區塊的展開狀態
func (e *Engine) ToggleSection(ctx context.Context, id string, idx int) error {
	return e.queue.Do(ctx, func(ctx context.Context) error {
		old := e.view.Get(id)
		if old == nil || idx < 0 || idx >= len(old.Sections) {
			return nil
		}
		node := old.clone()
		node.Sections[idx].Expanded = !node.Sections[idx].Expanded
		e.view.Replace(id, node)
		e.scroll.update()
		return nil
	})
}

func (e *Engine) postOne(ctx context.Context, item Item, opts PostOptions) error {
	if e.view.Closed() || !item.IsVisible() {
		return nil
	}
	id := item.ItemID()

	// 已物化的條目不重複插入，改為原位刷新
	if e.view.Has(id) {
		return e.rerender(ctx, item)
	}

	e.markMaterialized(id)

	// 新發布的條目不應被當作尚未加載的歷史
	prevBookmark := e.currentBookmark()
	if prevBookmark == "" {
		e.setBookmark(id)
	}

	node, err := e.render(ctx, item, false)
	if err != nil {
		e.unmark(id)
		if prevBookmark == "" {
			e.setBookmark("")
		}
		e.log.Warn("發布條目渲染失敗", zap.String("id", id), zap.Error(err))
		return nil
	}
	if e.view.Closed() {
		e.unmark(id)
		return nil
	}

	// 網絡延遲可能導致更新的條目先到，此時排在它之前
	before := opts.Before
	if before == "" {
		before = e.view.NewerThan(item.ItemTime())
	}
	if before != "" && e.view.InsertBefore(before, node) {
		return nil
	}

	// 追加到底部
	e.view.Append(node)
	if e.scroll.IsAtBottom() || (e.viewerID != "" && item.AuthorID() == e.viewerID) {
		e.scrollBottom()
	} else if opts.Notify && e.onUnseen != nil {
		e.onUnseen(id)
	}
	return nil
}

func (e *Engine) updateItem(ctx context.Context, item Item) error {
	if e.view.Closed() {
		return nil
	}
	id := item.ItemID()

	if e.view.Has(id) {
		return e.rerender(ctx, item)
	}

	// 之前不可見的條目變為可見
	if !item.IsVisible() {
		return nil
	}

	items := e.model.Items()
	idx := indexOf(items, id)
	if bi := indexOf(items, e.currentBookmark()); idx >= 0 && bi >= 0 && idx < bi {
		return e.revealOlder(ctx, item, items, idx, bi)
	}

	return e.postOne(ctx, item, PostOptions{Before: e.nextMaterialized(items, idx)})
}

// revealOlder 處理書籤之前的條目變為成員 (例如置頂一條舊消息)
func (e *Engine) revealOlder(ctx context.Context, item Item, items []Item, idx, bi int) error {
	id := item.ItemID()

	// 與書籤之間沒有未加載的可見條目：直接插入並把書籤前移
	if !e.hasGap(items, idx, bi) {
		if err := e.postOne(ctx, item, PostOptions{Before: e.nextMaterialized(items, idx)}); err != nil {
			return err
		}
		if e.view.Has(id) {
			e.setBookmark(id)
		}
		e.scroll.update()
		return nil
	}

	// 中間還有未加載的歷史；可以滾動時交給滾動觸發的批次加載
	if !math.IsNaN(e.scroll.Ratio()) {
		e.log.Debug("條目位於未加載歷史中，等待批次加載", zap.String("id", id))
		return nil
	}

	// 內容不足一屏時不會有滾動事件，逐批加載直到覆蓋該條目
	for !e.view.Closed() {
		cur := e.model.Items()
		b := indexOf(cur, e.currentBookmark())
		if b <= 0 || b <= indexOf(cur, id) {
			break
		}
		if err := e.renderBatch(ctx, e.batchSize); err != nil {
			return err
		}
	}
	if e.scroll.IsAtBottom() {
		e.scrollBottom()
	}
	return nil
}

// nextMaterialized 模型順序中 idx 之後第一個已物化的可見條目
func (e *Engine) nextMaterialized(items []Item, idx int) string {
	if idx < 0 {
		return ""
	}
	for _, next := range items[idx+1:] {
		if next.IsVisible() && e.IsMaterialized(next.ItemID()) {
			return next.ItemID()
		}
	}
	return ""
}

// hasGap (idx, bi) 區間內是否有尚未物化的可見條目
func (e *Engine) hasGap(items []Item, idx, bi int) bool {
	for _, it := range items[idx+1 : bi] {
		if it.IsVisible() && !e.IsMaterialized(it.ItemID()) {
			return true
		}
	}
	return false
}

// rerender 原位替換節點，保留節點本地的展開狀態
func (e *Engine) rerender(ctx context.Context, item Item) error {
	id := item.ItemID()
	old := e.view.Get(id)
	if old == nil {
		return nil
	}
	node, err := e.render(ctx, item, true)
	if err != nil {
		e.log.Warn("重新渲染條目失敗，保留舊內容", zap.String("id", id), zap.Error(err))
		return nil
	}
	node.applyExpanded(old.expandedStates())
	e.view.Replace(id, node)
	e.scroll.update()
	return nil
}

func (e *Engine) deleteItem(id string) {
	e.unmark(id)
	if e.view.Closed() {
		return
	}

	if !e.view.Has(id) {
		// 書籤可能指向渲染失敗或不可見的條目，此時移到最舊的已物化節點
		if id != "" && id == e.currentBookmark() {
			first, _ := e.view.First()
			e.setBookmark(first)
		}
		return
	}

	if id == e.currentBookmark() {
		next, _ := e.view.NextSibling(id)
		e.setBookmark(next)
	}

	e.view.Remove(id)

	// 移除內容可能改變是否位於底部；接近頂部時會提交新的加載任務 (不等待)
	e.scroll.OnScroll()
}
