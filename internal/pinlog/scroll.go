package pinlog

import (
	"math"
	"sync"
)

// ScrollState 滾動狀態
type ScrollState int

const (
	// AtBottom 停留在最新內容處
	AtBottom ScrollState = iota
	// ScrolledUp 已向上滾動
	ScrolledUp
)

func (s ScrollState) String() string {
	if s == AtBottom {
		return "at_bottom"
	}
	return "scrolled_up"
}

const (
	bottomThreshold = 0.99
	topThreshold    = 0.01
)

// ScrollController 觀察滾動位置，接近頂部時觸發加載更早的批次
// 它是唯一一個自身不在隊列中、卻可以向隊列提交任務的組件。
type ScrollController struct {
	view *Container

	// loadOlder 提交 "加載批次 + 恢復錨點偏移" 任務
	loadOlder func(anchor string) <-chan error

	mu      sync.Mutex
	state   ScrollState
	loading bool
}

func newScrollController(view *Container, loadOlder func(anchor string) <-chan error) *ScrollController {
	return &ScrollController{
		view:      view,
		loadOlder: loadOlder,
		state:     AtBottom,
	}
}

// Ratio 滾動比例 scrollTop / (scrollHeight - clientHeight)
// 內容不足一屏時為 NaN。
func (c *ScrollController) Ratio() float64 {
	top, height, client := c.view.Metrics()
	span := height - client
	if span <= 0 {
		return math.NaN()
	}
	return float64(top) / float64(span)
}

// State 當前滾動狀態
func (c *ScrollController) State() ScrollState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAtBottom 是否停留在底部
func (c *ScrollController) IsAtBottom() bool {
	return c.State() == AtBottom
}

// Loading 是否有批次加載在途
func (c *ScrollController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// OnScroll 處理一次滾動事件
// 觸發了批次加載時返回其結果 channel，否則返回 nil。
func (c *ScrollController) OnScroll() <-chan error {
	pct := c.update()
	if math.IsNaN(pct) || pct >= topThreshold {
		return nil
	}
	if !c.tryBeginLoad() {
		return nil
	}
	// 記住頂部節點，加載完成後將它保持在原來的視覺位置
	anchor, _ := c.view.First()
	return c.loadOlder(anchor)
}

// update 只重新計算狀態，不觸發加載
func (c *ScrollController) update() float64 {
	pct := c.Ratio()
	c.mu.Lock()
	if pct > bottomThreshold || math.IsNaN(pct) {
		c.state = AtBottom
	} else {
		c.state = ScrolledUp
	}
	c.mu.Unlock()
	return pct
}

func (c *ScrollController) tryBeginLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return false
	}
	c.loading = true
	return true
}

func (c *ScrollController) finishLoad() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

// reset 視圖關閉時重置
func (c *ScrollController) reset() {
	c.mu.Lock()
	c.state = AtBottom
	c.loading = false
	c.mu.Unlock()
}
