package pinlog

import (
	"context"
	"time"
)

// Section 條目內可折疊的區塊 (例如擲骰明細)
type Section struct {
	Summary  string
	Detail   []string
	Expanded bool
}

// Node 條目渲染後的可顯示節點
// 節點插入容器後視為不可變，修改時先 clone 再整體替換。
type Node struct {
	ID       string
	Header   string
	Stamp    time.Time
	Body     []string
	Sections []Section
}

// Height 節點佔用的行數 (含末尾空行)
func (n *Node) Height() int {
	h := 1 + len(n.Body)
	for _, s := range n.Sections {
		h++
		if s.Expanded {
			h += len(s.Detail)
		}
	}
	return h + 1
}

func (n *Node) lines(stamp func(time.Time) string) []string {
	out := make([]string, 0, n.Height())

	header := n.Header
	if stamp != nil && !n.Stamp.IsZero() {
		if st := stamp(n.Stamp); st != "" {
			header += "  " + st
		}
	}
	out = append(out, header)
	out = append(out, n.Body...)

	for _, s := range n.Sections {
		marker := "▸ "
		if s.Expanded {
			marker = "▾ "
		}
		out = append(out, marker+s.Summary)
		if s.Expanded {
			out = append(out, s.Detail...)
		}
	}
	return append(out, "")
}

func (n *Node) clone() *Node {
	c := *n
	c.Body = append([]string(nil), n.Body...)
	c.Sections = make([]Section, len(n.Sections))
	for i, s := range n.Sections {
		s.Detail = append([]string(nil), s.Detail...)
		c.Sections[i] = s
	}
	return &c
}

// expandedStates 提取節點本地的展開狀態
func (n *Node) expandedStates() []bool {
	states := make([]bool, len(n.Sections))
	for i, s := range n.Sections {
		states[i] = s.Expanded
	}
	return states
}

// applyExpanded 按索引將展開狀態重新應用到替換節點上
func (n *Node) applyExpanded(states []bool) {
	for i := range n.Sections {
		if i < len(states) {
			n.Sections[i].Expanded = states[i]
		}
	}
}

// RenderOptions 渲染參數
type RenderOptions struct {
	// Width 可用寬度 (字符列)
	Width int
	// Rerender 為 true 表示替換已有節點
	Rerender bool
}

// Renderer 將單個條目渲染為節點，可能失敗
type Renderer interface {
	Render(ctx context.Context, item Item, opts RenderOptions) (*Node, error)
}

// RendererFunc 函數適配器
type RendererFunc func(ctx context.Context, item Item, opts RenderOptions) (*Node, error)

func (f RendererFunc) Render(ctx context.Context, item Item, opts RenderOptions) (*Node, error) {
	return f(ctx, item, opts)
}
