package pinlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

type fakeItem struct {
	id       string
	ts       time.Time
	visible  bool
	author   string
	pinned   bool
	content  string
	sections int
}

func (f *fakeItem) ItemID() string      { return f.id }
func (f *fakeItem) ItemTime() time.Time { return f.ts }
func (f *fakeItem) IsVisible() bool     { return f.visible }
func (f *fakeItem) AuthorID() string    { return f.author }

func newItem(i int) *fakeItem {
	return &fakeItem{
		id:      fmt.Sprintf("m%d", i),
		ts:      baseTime.Add(time.Duration(i) * time.Minute),
		visible: true,
		author:  "alice",
		pinned:  true,
		content: fmt.Sprintf("content %d", i),
	}
}

// fakeCollection 模擬宿主集合
type fakeCollection struct {
	mu    sync.Mutex
	items []*fakeItem
}

func newCollection(n int) *fakeCollection {
	c := &fakeCollection{}
	for i := 1; i <= n; i++ {
		c.items = append(c.items, newItem(i))
	}
	return c
}

func (c *fakeCollection) Contents() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it
	}
	return out
}

func (c *fakeCollection) add(it *fakeItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, it)
}

func (c *fakeCollection) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.id == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *fakeCollection) get(id string) *fakeItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.id == id {
			return it
		}
	}
	return nil
}

func pinned(it Item) bool {
	f, ok := it.(*fakeItem)
	return ok && f.pinned
}

// fakeRenderer 可注入失敗與阻塞的渲染器
type fakeRenderer struct {
	mu    sync.Mutex
	fail   map[string]bool
	calls  []string
	widths []int
	// gate 非空時第一次渲染前通知 entered 並等待 gate 關閉
	gate    chan struct{}
	entered chan struct{}
}

func newRenderer() *fakeRenderer {
	return &fakeRenderer{fail: map[string]bool{}}
}

func (r *fakeRenderer) Render(_ context.Context, item Item, opts RenderOptions) (*Node, error) {
	r.mu.Lock()
	gate, entered := r.gate, r.entered
	r.gate, r.entered = nil, nil
	r.calls = append(r.calls, item.ItemID())
	r.widths = append(r.widths, opts.Width)
	fail := r.fail[item.ItemID()]
	r.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}
	if fail {
		return nil, errors.New("template error")
	}

	f := item.(*fakeItem)
	node := &Node{
		Header: f.id,
		Body:   []string{f.content},
	}
	for i := 0; i < f.sections; i++ {
		node.Sections = append(node.Sections, Section{
			Summary: fmt.Sprintf("roll %d", i),
			Detail:  []string{"1d20 = 15"},
		})
	}
	return node, nil
}

func (r *fakeRenderer) block() (entered chan struct{}, release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	r.entered = make(chan struct{})
	gate := r.gate
	return r.entered, func() { close(gate) }
}

type fixture struct {
	coll     *fakeCollection
	renderer *fakeRenderer
	engine   *Engine
	unseen   []string
	mu       sync.Mutex
}

// newFixture 高度足夠大時內容不足一屏，滾動不會觸發自動加載
func newFixture(t *testing.T, n int, height int) *fixture {
	t.Helper()
	f := &fixture{
		coll:     newCollection(n),
		renderer: newRenderer(),
	}
	f.engine = New(Config{
		Model:     NewModel(f.coll, pinned),
		Renderer:  f.renderer,
		ViewerID:  "gm",
		BatchSize: 4,
		Width:     60,
		Height:    height,
		Logger:    zap.NewNop(),
		OnUnseen: func(id string) {
			f.mu.Lock()
			f.unseen = append(f.unseen, id)
			f.mu.Unlock()
		},
		StampFormat: func(time.Time) string { return "" },
	})
	return f
}

func (f *fixture) unseenIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.unseen...)
}

func ids(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("m%d", i))
	}
	return out
}

// requireInvariants 已物化條目構成模型序列的連續後綴，書籤指向已物化條目
func requireInvariants(t *testing.T, f *fixture) {
	t.Helper()
	e := f.engine
	snapshot := e.Snapshot()
	require.Equal(t, len(snapshot), e.Materialized(), "shadow state out of sync with view")

	if bm, ok := e.Bookmark(); ok {
		require.True(t, e.IsMaterialized(bm), "bookmark %s is not materialized", bm)
		first, _ := e.view.First()
		require.Equal(t, first, bm, "bookmark must be the oldest materialized item")
	}
	if len(snapshot) == 0 {
		return
	}

	items := e.model.Items()
	start := indexOf(items, snapshot[0])
	require.GreaterOrEqual(t, start, 0)

	var suffix []string
	for _, it := range items[start:] {
		if it.IsVisible() {
			suffix = append(suffix, it.ItemID())
		}
	}
	require.ElementsMatch(t, suffix, snapshot, "materialized items must be a contiguous suffix")
}

// lastWidths 最近 n 次渲染使用的寬度
func (r *fakeRenderer) lastWidths(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > len(r.widths) {
		n = len(r.widths)
	}
	return append([]int(nil), r.widths[len(r.widths)-n:]...)
}
