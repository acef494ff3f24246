package pinlog

import (
	"strings"
	"sync"
	"time"
)

// Container 已物化節點的有序容器及其滾動度量
// 頂部為最舊條目，底部為最新條目。滾動偏移以行為單位。
// 關閉後所有寫操作均為空操作，讀操作返回零值。
type Container struct {
	mu           sync.RWMutex
	nodes        []*Node
	scrollTop    int
	clientHeight int
	closed       bool
	stamp        func(time.Time) string
}

// NewContainer 創建容器
func NewContainer(clientHeight int, stamp func(time.Time) string) *Container {
	if clientHeight < 1 {
		clientHeight = 1
	}
	return &Container{
		clientHeight: clientHeight,
		stamp:        stamp,
	}
}

// Close 拆除容器
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.nodes = nil
	c.scrollTop = 0
}

// Closed 容器是否已拆除
func (c *Container) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Len 節點數量
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// IDs 按顯示順序返回節點 id
func (c *Container) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Has 是否存在該節點
func (c *Container) Has(id string) bool {
	return c.Get(id) != nil
}

// Get 獲取節點 (只讀)
func (c *Container) Get(id string) *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.find(id); i >= 0 {
		return c.nodes[i]
	}
	return nil
}

// First 頂部 (最舊) 節點 id
func (c *Container) First() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.nodes) == 0 {
		return "", false
	}
	return c.nodes[0].ID, true
}

// NextSibling 下一個 (更新的) 節點 id
func (c *Container) NextSibling(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.find(id)
	if i < 0 || i+1 >= len(c.nodes) {
		return "", false
	}
	return c.nodes[i+1].ID, true
}

// NewerThan 從底部向上掃描，返回時間戳晚於 t 的最早那個連續節點
// 遇到時間戳不晚於 t 的節點即停止；沒有更新的節點時返回空。
// 時間戳相等視為不更新，新條目排在相等條目之後。
func (c *Container) NewerThan(t time.Time) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	newer := ""
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if !c.nodes[i].Stamp.After(t) {
			break
		}
		newer = c.nodes[i].ID
	}
	return newer
}

// Prepend 將節點按順序插入頂部
func (c *Container) Prepend(nodes ...*Node) {
	if len(nodes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	merged := make([]*Node, 0, len(nodes)+len(c.nodes))
	merged = append(merged, nodes...)
	c.nodes = append(merged, c.nodes...)
}

// Append 追加到底部
func (c *Container) Append(n *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.nodes = append(c.nodes, n)
}

// InsertBefore 插入到錨點節點之上，錨點不存在時返回 false
func (c *Container) InsertBefore(anchor string, n *Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	i := c.find(anchor)
	if i < 0 {
		return false
	}
	c.nodes = append(c.nodes, nil)
	copy(c.nodes[i+1:], c.nodes[i:])
	c.nodes[i] = n
	return true
}

// Replace 原位替換節點內容
func (c *Container) Replace(id string, n *Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.nodes[i] = n
	c.clampLocked()
	return true
}

// Remove 移除節點
func (c *Container) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
	c.clampLocked()
	return true
}

// OffsetTop 節點頂部相對內容起點的行偏移
func (c *Container) OffsetTop(id string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	off := 0
	for _, n := range c.nodes {
		if n.ID == id {
			return off, true
		}
		off += n.Height()
	}
	return 0, false
}

// ScrollTop 當前滾動偏移
func (c *Container) ScrollTop() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scrollTop
}

// SetScrollTop 設置滾動偏移 (自動夾緊到合法範圍)
func (c *Container) SetScrollTop(top int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.scrollTop = top
	c.clampLocked()
}

// ScrollHeight 內容總行數
func (c *Container) ScrollHeight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.heightLocked()
}

// ClientHeight 可視區高度
func (c *Container) ClientHeight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clientHeight
}

// SetClientHeight 調整可視區高度
func (c *Container) SetClientHeight(h int) {
	if h < 1 {
		h = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientHeight = h
	c.clampLocked()
}

// Metrics 一次性讀取滾動度量
func (c *Container) Metrics() (scrollTop, scrollHeight, clientHeight int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scrollTop, c.heightLocked(), c.clientHeight
}

// Content 完整內容
func (c *Container) Content() string {
	return strings.Join(c.Lines(), "\n")
}

// Lines 所有內容行
func (c *Container) Lines() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, n := range c.nodes {
		out = append(out, n.lines(c.stamp)...)
	}
	return out
}

// Window 當前可視區內的行
func (c *Container) Window() []string {
	lines := c.Lines()
	top, _, h := c.Metrics()
	if top >= len(lines) {
		return nil
	}
	end := top + h
	if end > len(lines) {
		end = len(lines)
	}
	return lines[top:end]
}

func (c *Container) find(id string) int {
	for i, n := range c.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (c *Container) heightLocked() int {
	h := 0
	for _, n := range c.nodes {
		h += n.Height()
	}
	return h
}

func (c *Container) clampLocked() {
	max := c.heightLocked() - c.clientHeight
	if max < 0 {
		max = 0
	}
	if c.scrollTop > max {
		c.scrollTop = max
	}
	if c.scrollTop < 0 {
		c.scrollTop = 0
	}
}
