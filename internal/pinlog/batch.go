package pinlog

import (
	"context"
	"fmt"

	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
	"go.uber.org/zap"
)

// RenderNextBatch 物化下一批更早的條目，插入到當前最舊節點之上
// 已有批次在途時直接返回；批次不會自動連鎖，需要更多內容時需再次調用。
func (e *Engine) RenderNextBatch(ctx context.Context, size int) error {
	if size <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidBatchSize, apperrors.CodeBatch, fmt.Sprintf("批次大小 %d 非法", size))
	}
	if !e.scroll.tryBeginLoad() {
		return nil
	}
	return e.queue.Do(ctx, func(ctx context.Context) error {
		defer e.scroll.finishLoad()
		return e.renderBatch(ctx, size)
	})
}

// loadOlder 滾動觸發的加載：渲染批次後恢復錨點節點的視覺位置
// 兩步在同一個隊列任務內完成，中間不會插入其他操作。
func (e *Engine) loadOlder(anchor string) <-chan error {
	size := e.batchSize
	return e.queue.Add(context.Background(), func(ctx context.Context) error {
		defer e.scroll.finishLoad()
		if err := e.renderBatch(ctx, size); err != nil {
			return err
		}
		if anchor != "" {
			if off, ok := e.view.OffsetTop(anchor); ok {
				e.view.SetScrollTop(off)
			}
		}
		e.scroll.update()
		return nil
	})
}

func (e *Engine) renderBatch(ctx context.Context, size int) error {
	if e.view.Closed() {
		return nil
	}

	items := e.model.Items()

	// 1. 定位書籤；不存在 (首次加載或已被刪除) 時從末尾開始
	lastIdx := indexOf(items, e.currentBookmark())
	if lastIdx < 0 {
		lastIdx = len(items)
	}
	if lastIdx == 0 {
		return nil
	}

	// 2. 計算本批次範圍
	targetIdx := lastIdx - size
	if targetIdx < 0 {
		targetIdx = 0
	}

	// 3. 逐個渲染；單個失敗只跳過該條目
	nodes := make([]*Node, 0, lastIdx-targetIdx)
	for i := targetIdx; i < lastIdx; i++ {
		// 視圖在渲染期間被關閉
		if e.view.Closed() {
			return nil
		}
		item := items[i]
		if !item.IsVisible() {
			continue
		}
		id := item.ItemID()
		if e.IsMaterialized(id) {
			// 書籤丟失後重新掃描時避免重複物化
			continue
		}

		e.markMaterialized(id)
		node, err := e.render(ctx, item, false)
		if err != nil {
			e.unmark(id)
			e.log.Warn("批次渲染跳過條目", zap.String("id", id), zap.Error(err))
			continue
		}
		nodes = append(nodes, node)
	}

	// 4. 插入頂部並推進書籤 (即使該條目渲染失敗也推進)
	if e.view.Closed() {
		return nil
	}
	e.view.Prepend(nodes...)
	e.setBookmark(items[targetIdx].ItemID())

	e.log.Debug("批次渲染完成",
		zap.Int("from", targetIdx),
		zap.Int("to", lastIdx),
		zap.Int("rendered", len(nodes)),
	)
	return nil
}

func errRenderer(id, message string, err error) error {
	if err == nil {
		err = apperrors.ErrRenderFailed
	} else {
		err = fmt.Errorf("%w: %w", apperrors.ErrRenderFailed, err)
	}
	return apperrors.Wrap(err, apperrors.CodeRender, fmt.Sprintf("%s [%s]", message, id))
}
