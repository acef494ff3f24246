package pinlog

import (
	"context"
	"sync"
	"time"

	"github.com/Yat-Muk/chatpins/internal/pkg/semaphore"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DefaultBatchSize 默認批次大小
const DefaultBatchSize = 100

// Config 引擎配置
type Config struct {
	Model    *Model
	Renderer Renderer
	// ViewerID 當前查看者，自己發出的條目總是自動滾動到底部
	ViewerID  string
	BatchSize int
	Width     int
	Height    int
	Logger    *zap.Logger
	// OnUnseen 新條目追加到底部但視圖未跟隨時的被動提示
	OnUnseen func(id string)
	// StampFormat 時間戳格式化，默認為相對時間
	StampFormat func(time.Time) string
}

// Engine 增量虛擬日誌引擎 (門面)
// 公開操作全部經由單並發隊列執行。
type Engine struct {
	model     *Model
	renderer  Renderer
	viewerID  string
	batchSize int
	onUnseen  func(string)
	log       *zap.Logger

	queue  *semaphore.Semaphore
	view   *Container
	scroll *ScrollController

	mu           sync.RWMutex
	width        int
	bookmark     string
	materialized map[string]struct{}
}

// New 創建引擎
func New(cfg Config) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.StampFormat == nil {
		cfg.StampFormat = humanize.Time
	}

	e := &Engine{
		model:        cfg.Model,
		renderer:     cfg.Renderer,
		viewerID:     cfg.ViewerID,
		batchSize:    cfg.BatchSize,
		onUnseen:     cfg.OnUnseen,
		log:          cfg.Logger.Named("pinlog"),
		queue:        semaphore.New(1),
		view:         NewContainer(cfg.Height, cfg.StampFormat),
		width:        cfg.Width,
		materialized: make(map[string]struct{}),
	}
	e.scroll = newScrollController(e.view, e.loadOlder)
	return e
}

// Open 首次渲染：加載一個批次並滾動到底部
func (e *Engine) Open(ctx context.Context) error {
	if err := e.RenderNextBatch(ctx, e.batchSize); err != nil {
		return err
	}
	return e.ScrollToBottom(ctx, ScrollOptions{})
}

// Close 關閉視圖
// 重置書籤與滾動狀態；在途任務繼續執行，但其副作用落在已拆除的容器上。
func (e *Engine) Close() {
	e.view.Close()
	e.scroll.reset()

	e.mu.Lock()
	e.bookmark = ""
	e.materialized = make(map[string]struct{})
	e.mu.Unlock()

	e.log.Debug("日誌視圖已關閉")
}

// Closed 視圖是否已關閉
func (e *Engine) Closed() bool {
	return e.view.Closed()
}

// ========================================
// 讀取訪問器
// ========================================

// Bookmark 最舊已物化條目的 id
func (e *Engine) Bookmark() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bookmark, e.bookmark != ""
}

// IsMaterialized 條目是否已物化
func (e *Engine) IsMaterialized(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.materialized[id]
	return ok
}

// Materialized 已物化條目數量
func (e *Engine) Materialized() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.materialized)
}

// Snapshot 按顯示順序返回節點 id
func (e *Engine) Snapshot() []string { return e.view.IDs() }

// IsAtBottom 視圖是否停留在底部
func (e *Engine) IsAtBottom() bool { return e.scroll.IsAtBottom() }

// ScrollState 當前滾動狀態
func (e *Engine) ScrollState() ScrollState { return e.scroll.State() }

// Loading 是否有批次加載在途
func (e *Engine) Loading() bool { return e.scroll.Loading() }

// Content 完整內容
func (e *Engine) Content() string { return e.view.Content() }

// Window 可視區內容
func (e *Engine) Window() []string { return e.view.Window() }

// ScrollTop 當前滾動偏移
func (e *Engine) ScrollTop() int { return e.view.ScrollTop() }

// ScrollHeight 內容總行數
func (e *Engine) ScrollHeight() int { return e.view.ScrollHeight() }

// NodeAt 返回覆蓋指定內容行的節點 id
func (e *Engine) NodeAt(line int) (string, bool) {
	for _, id := range e.view.IDs() {
		off, ok := e.view.OffsetTop(id)
		if !ok {
			continue
		}
		if n := e.view.Get(id); n != nil && line >= off && line < off+n.Height() {
			return id, true
		}
	}
	return "", false
}

// TopVisible 可視區頂部的節點 id
func (e *Engine) TopVisible() (string, bool) {
	return e.NodeAt(e.view.ScrollTop())
}

// ========================================
// 滾動事件 (不經隊列，由用戶輸入驅動)
// ========================================

// ScrollBy 相對滾動
func (e *Engine) ScrollBy(delta int) <-chan error {
	e.view.SetScrollTop(e.view.ScrollTop() + delta)
	return e.scroll.OnScroll()
}

// ScrollTo 絕對滾動
func (e *Engine) ScrollTo(top int) <-chan error {
	e.view.SetScrollTop(top)
	return e.scroll.OnScroll()
}

// Resize 調整可視區尺寸
// 寬度變化時提交一個任務按新寬度重排全部節點；返回最後一個相關任務的結果 channel。
func (e *Engine) Resize(width, height int) <-chan error {
	e.mu.Lock()
	rewrap := width > 0 && width != e.width
	if width > 0 {
		e.width = width
	}
	e.mu.Unlock()

	e.view.SetClientHeight(height)

	var done <-chan error
	if rewrap && e.view.Len() > 0 {
		done = e.queue.Add(context.Background(), e.rewrap)
	}
	if load := e.scroll.OnScroll(); load != nil {
		return load
	}
	return done
}

// rewrap 重新渲染全部已物化節點，保持底部跟隨或頂部節點位置
func (e *Engine) rewrap(ctx context.Context) error {
	if e.view.Closed() {
		return nil
	}
	atBottom := e.scroll.IsAtBottom()
	anchor, hasAnchor := e.TopVisible()

	for _, it := range e.model.Items() {
		if e.view.Has(it.ItemID()) {
			if err := e.rerender(ctx, it); err != nil {
				return err
			}
		}
	}

	switch {
	case atBottom:
		e.scrollBottom()
	case hasAnchor:
		if off, ok := e.view.OffsetTop(anchor); ok {
			e.view.SetScrollTop(off)
		}
		e.scroll.update()
	}
	return nil
}

// ========================================
// 內部狀態 (只在隊列任務內修改)
// ========================================

func (e *Engine) currentBookmark() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bookmark
}

func (e *Engine) setBookmark(id string) {
	e.mu.Lock()
	e.bookmark = id
	e.mu.Unlock()
}

func (e *Engine) markMaterialized(id string) {
	e.mu.Lock()
	e.materialized[id] = struct{}{}
	e.mu.Unlock()
}

func (e *Engine) unmark(id string) {
	e.mu.Lock()
	delete(e.materialized, id)
	e.mu.Unlock()
}

func (e *Engine) renderOptions(rerender bool) RenderOptions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return RenderOptions{Width: e.width, Rerender: rerender}
}

// render 調用外部渲染器並校驗結果
func (e *Engine) render(ctx context.Context, item Item, rerender bool) (*Node, error) {
	if e.renderer == nil {
		return nil, errRenderer(item.ItemID(), "渲染器未配置", nil)
	}
	node, err := e.renderer.Render(ctx, item, e.renderOptions(rerender))
	if err != nil {
		return nil, errRenderer(item.ItemID(), "渲染條目失敗", err)
	}
	if node == nil {
		return nil, errRenderer(item.ItemID(), "渲染器返回空節點", nil)
	}
	node.ID = item.ItemID()
	if node.Stamp.IsZero() {
		node.Stamp = item.ItemTime()
	}
	return node, nil
}

// scrollBottom 在隊列任務內直接滾動到底部
func (e *Engine) scrollBottom() {
	e.view.SetScrollTop(e.view.ScrollHeight())
	e.scroll.update()
}
