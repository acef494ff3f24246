package pinlog

import (
	"context"
	"math/rand"
	"testing"
	"time"

	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNextBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("首次加載物化最新一批", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
		bm, ok := f.engine.Bookmark()
		require.True(t, ok)
		assert.Equal(t, "m7", bm)
		requireInvariants(t, f)
	})

	t.Run("再次加載插入到頂部", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		assert.Equal(t, ids(3, 10), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m3", bm)
		requireInvariants(t, f)
	})

	t.Run("不足一批時加載到最舊", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		for i := 0; i < 3; i++ {
			require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		}
		assert.Equal(t, ids(1, 10), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m1", bm)
		requireInvariants(t, f)
	})

	t.Run("已到最舊條目時為空操作", func(t *testing.T) {
		f := newFixture(t, 4, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		calls := len(f.renderer.calls)

		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		assert.Equal(t, ids(1, 4), f.engine.Snapshot())
		assert.Len(t, f.renderer.calls, calls)
	})

	t.Run("空模型", func(t *testing.T) {
		f := newFixture(t, 0, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		assert.Empty(t, f.engine.Snapshot())
		_, ok := f.engine.Bookmark()
		assert.False(t, ok)
	})

	t.Run("非法批次大小", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		err := f.engine.RenderNextBatch(ctx, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidBatchSize)
		assert.Equal(t, apperrors.CodeBatch, apperrors.CodeOf(err))
		assert.False(t, f.engine.Loading())
	})

	t.Run("跳過不可見條目", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.coll.get("m9").visible = false
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		assert.Equal(t, []string{"m7", "m8", "m10"}, f.engine.Snapshot())
		assert.NotContains(t, f.renderer.calls, "m9")
		requireInvariants(t, f)
	})

	t.Run("單個渲染失敗不影響批次", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.renderer.fail["m8"] = true
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		assert.Equal(t, []string{"m7", "m9", "m10"}, f.engine.Snapshot())
		assert.False(t, f.engine.IsMaterialized("m8"))
		assert.Equal(t, 3, f.engine.Materialized())
	})

	t.Run("目標條目渲染失敗時書籤仍推進", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.renderer.fail["m7"] = true
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m7", bm)
		assert.False(t, f.engine.IsMaterialized("m7"))

		// 下一批從書籤之前繼續，不會重試 m7
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		assert.Equal(t, []string{"m3", "m4", "m5", "m6", "m8", "m9", "m10"}, f.engine.Snapshot())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, 6)
	require.NoError(t, f.engine.Open(ctx))

	// 每個節點 3 行：標題、正文、空行
	assert.Equal(t, 12, f.engine.ScrollHeight())
	assert.Equal(t, 6, f.engine.ScrollTop())
	assert.True(t, f.engine.IsAtBottom())
	assert.Equal(t, AtBottom, f.engine.ScrollState())
	assert.Equal(t, []string{"m9", "content 9", "", "m10", "content 10", ""}, f.engine.Window())
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()

	t.Run("刪除書籤條目後書籤移到下一個", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		f.coll.remove("m3")
		require.NoError(t, f.engine.DeleteItem(ctx, "m3"))

		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m4", bm)
		assert.Equal(t, ids(4, 10), f.engine.Snapshot())
		assert.False(t, f.engine.IsMaterialized("m3"))
		requireInvariants(t, f)
	})

	t.Run("刪除中間條目", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		f.coll.remove("m9")
		require.NoError(t, f.engine.DeleteItem(ctx, "m9"))

		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m7", bm)
		assert.Equal(t, []string{"m7", "m8", "m10"}, f.engine.Snapshot())
		requireInvariants(t, f)
	})

	t.Run("刪除未物化條目為空操作", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		f.coll.remove("m2")
		require.NoError(t, f.engine.DeleteItem(ctx, "m2"))
		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
	})

	t.Run("刪除全部後書籤清空並從末尾重新加載", func(t *testing.T) {
		f := newFixture(t, 6, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 2))
		for _, id := range ids(5, 6) {
			f.coll.remove(id)
			require.NoError(t, f.engine.DeleteItem(ctx, id))
		}
		_, ok := f.engine.Bookmark()
		assert.False(t, ok)

		require.NoError(t, f.engine.RenderNextBatch(ctx, 2))
		assert.Equal(t, ids(3, 4), f.engine.Snapshot())
		requireInvariants(t, f)
	})

	t.Run("書籤條目未渲染時移到最舊節點", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.renderer.fail["m7"] = true
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		f.coll.remove("m7")
		require.NoError(t, f.engine.DeleteItem(ctx, "m7"))

		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m8", bm)
		requireInvariants(t, f)
	})
}

func TestPostOne(t *testing.T) {
	ctx := context.Background()

	t.Run("位於底部時追加並自動滾動", func(t *testing.T) {
		f := newFixture(t, 10, 6)
		require.NoError(t, f.engine.Open(ctx))

		m11 := newItem(11)
		f.coll.add(m11)
		require.NoError(t, f.engine.PostOne(ctx, m11, PostOptions{Notify: true}))

		assert.Equal(t, ids(7, 11), f.engine.Snapshot())
		assert.Equal(t, f.engine.ScrollHeight()-6, f.engine.ScrollTop())
		assert.True(t, f.engine.IsAtBottom())
		assert.Empty(t, f.unseenIDs())
	})

	t.Run("延遲到達的舊條目按時間戳插入", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.Open(ctx))

		late := &fakeItem{
			id:      "late",
			ts:      baseTime.Add(9*time.Minute + 30*time.Second),
			visible: true,
			pinned:  true,
		}
		require.NoError(t, f.engine.PostOne(ctx, late, PostOptions{}))
		assert.Equal(t, []string{"m7", "m8", "m9", "late", "m10"}, f.engine.Snapshot())
	})

	t.Run("亂序到達按時間戳排序", func(t *testing.T) {
		f := newFixture(t, 0, 1000)
		t1, t2, t3 := newItem(1), newItem(2), newItem(3)
		for _, it := range []*fakeItem{t3, t1, t2} {
			require.NoError(t, f.engine.PostOne(ctx, it, PostOptions{}))
		}
		assert.Equal(t, ids(1, 3), f.engine.Snapshot())
		// 書籤按到達順序記錄
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m3", bm)
	})

	t.Run("時間戳相等時排在已有條目之後", func(t *testing.T) {
		f := newFixture(t, 0, 1000)
		a := newItem(1)
		b := &fakeItem{id: "twin", ts: a.ts, visible: true, pinned: true}
		require.NoError(t, f.engine.PostOne(ctx, a, PostOptions{}))
		require.NoError(t, f.engine.PostOne(ctx, b, PostOptions{}))
		assert.Equal(t, []string{"m1", "twin"}, f.engine.Snapshot())
	})

	t.Run("指定 before 插入", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.Open(ctx))

		m11 := newItem(11)
		require.NoError(t, f.engine.PostOne(ctx, m11, PostOptions{Before: "m8"}))
		assert.Equal(t, []string{"m7", "m11", "m8", "m9", "m10"}, f.engine.Snapshot())
	})

	t.Run("首條目成為書籤", func(t *testing.T) {
		f := newFixture(t, 0, 1000)
		m1 := newItem(1)
		require.NoError(t, f.engine.PostOne(ctx, m1, PostOptions{}))
		bm, ok := f.engine.Bookmark()
		require.True(t, ok)
		assert.Equal(t, "m1", bm)
	})

	t.Run("不可見條目不物化", func(t *testing.T) {
		f := newFixture(t, 0, 1000)
		m1 := newItem(1)
		m1.visible = false
		require.NoError(t, f.engine.PostOne(ctx, m1, PostOptions{}))
		assert.Empty(t, f.engine.Snapshot())
	})

	t.Run("渲染失敗不留下狀態", func(t *testing.T) {
		f := newFixture(t, 0, 1000)
		f.renderer.fail["m1"] = true
		require.NoError(t, f.engine.PostOne(ctx, newItem(1), PostOptions{}))
		assert.Empty(t, f.engine.Snapshot())
		assert.False(t, f.engine.IsMaterialized("m1"))
		_, ok := f.engine.Bookmark()
		assert.False(t, ok)
	})

	t.Run("重複發布改為原位刷新", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.Open(ctx))

		m10 := f.coll.get("m10")
		m10.content = "edited"
		require.NoError(t, f.engine.PostOne(ctx, m10, PostOptions{}))
		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
		assert.Equal(t, []string{"edited"}, f.engine.view.Get("m10").Body)
	})
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("保留區塊展開狀態", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.coll.get("m10").sections = 2
		require.NoError(t, f.engine.Open(ctx))
		require.NoError(t, f.engine.ToggleSection(ctx, "m10", 1))

		m10 := f.coll.get("m10")
		m10.content = "edited"
		require.NoError(t, f.engine.UpdateItem(ctx, m10))

		node := f.engine.view.Get("m10")
		require.NotNil(t, node)
		assert.Equal(t, []string{"edited"}, node.Body)
		assert.False(t, node.Sections[0].Expanded)
		assert.True(t, node.Sections[1].Expanded)
		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
	})

	t.Run("重新渲染失敗保留舊節點", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.Open(ctx))

		f.renderer.fail["m9"] = true
		m9 := f.coll.get("m9")
		m9.content = "edited"
		require.NoError(t, f.engine.UpdateItem(ctx, m9))
		assert.Equal(t, []string{"content 9"}, f.engine.view.Get("m9").Body)
	})

	t.Run("變為可見時插入到後繼節點之前", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.coll.get("m9").visible = false
		require.NoError(t, f.engine.Open(ctx))
		require.Equal(t, []string{"m7", "m8", "m10"}, f.engine.Snapshot())

		m9 := f.coll.get("m9")
		m9.visible = true
		require.NoError(t, f.engine.UpdateItem(ctx, m9))
		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
		requireInvariants(t, f)
	})

	t.Run("置頂更早的條目時插入並前移書籤", func(t *testing.T) {
		f := newFixture(t, 4, 1000)
		f.coll.get("m1").pinned = false
		require.NoError(t, f.engine.Open(ctx))
		require.Equal(t, ids(2, 4), f.engine.Snapshot())

		m1 := f.coll.get("m1")
		m1.pinned = true
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventUpdated, Item: m1}))

		assert.Equal(t, ids(1, 4), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m1", bm)
		assert.Nil(t, f.engine.ScrollTo(0))
		requireInvariants(t, f)
	})

	t.Run("內容不足一屏時補齊未加載歷史", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		f.coll.get("m2").visible = false
		require.NoError(t, f.engine.Open(ctx))

		m2 := f.coll.get("m2")
		m2.visible = true
		require.NoError(t, f.engine.UpdateItem(ctx, m2))
		assert.Equal(t, ids(1, 10), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m1", bm)
		assert.True(t, f.engine.IsAtBottom())
		requireInvariants(t, f)
	})

	t.Run("可滾動時由滾動觸發的批次加載補齊", func(t *testing.T) {
		f := newFixture(t, 10, 6)
		f.coll.get("m2").visible = false
		require.NoError(t, f.engine.Open(ctx))

		m2 := f.coll.get("m2")
		m2.visible = true
		require.NoError(t, f.engine.UpdateItem(ctx, m2))
		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
		requireInvariants(t, f)

		for i := 0; i < 2; i++ {
			ch := f.engine.ScrollTo(0)
			require.NotNil(t, ch)
			require.NoError(t, <-ch)
		}
		assert.Equal(t, ids(1, 10), f.engine.Snapshot())
		requireInvariants(t, f)
	})

	t.Run("不可見且未物化時為空操作", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.Open(ctx))

		m2 := f.coll.get("m2")
		m2.visible = false
		require.NoError(t, f.engine.UpdateItem(ctx, m2))
		assert.Equal(t, ids(7, 10), f.engine.Snapshot())
	})
}

func TestToggleSection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, 1000)
	f.coll.get("m3").sections = 1
	require.NoError(t, f.engine.Open(ctx))

	before := f.engine.ScrollHeight()
	require.NoError(t, f.engine.ToggleSection(ctx, "m3", 0))
	assert.Equal(t, before+1, f.engine.ScrollHeight())
	assert.Contains(t, f.engine.Content(), "▾ roll 0")

	require.NoError(t, f.engine.ToggleSection(ctx, "m3", 0))
	assert.Equal(t, before, f.engine.ScrollHeight())

	// 越界與不存在的節點
	require.NoError(t, f.engine.ToggleSection(ctx, "m3", 5))
	require.NoError(t, f.engine.ToggleSection(ctx, "missing", 0))
}

func TestScrollTriggeredLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, 6)
	require.NoError(t, f.engine.Open(ctx))
	require.Equal(t, 6, f.engine.ScrollTop())

	t.Run("中間位置不觸發加載", func(t *testing.T) {
		assert.Nil(t, f.engine.ScrollTo(3))
		assert.Equal(t, ScrolledUp, f.engine.ScrollState())
		assert.False(t, f.engine.Loading())
	})

	t.Run("接近頂部時加載並保持錨點位置", func(t *testing.T) {
		ch := f.engine.ScrollTo(0)
		require.NotNil(t, ch)
		require.NoError(t, <-ch)

		assert.Equal(t, ids(3, 10), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m3", bm)

		// m7 前面插入了 4 個 3 行的節點
		assert.Equal(t, 12, f.engine.ScrollTop())
		top, ok := f.engine.TopVisible()
		require.True(t, ok)
		assert.Equal(t, "m7", top)
		assert.False(t, f.engine.Loading())
		assert.Equal(t, ScrolledUp, f.engine.ScrollState())
	})

	t.Run("回到底部", func(t *testing.T) {
		require.NoError(t, f.engine.ScrollToBottom(ctx, ScrollOptions{}))
		assert.True(t, f.engine.IsAtBottom())
		assert.Equal(t, f.engine.ScrollHeight()-6, f.engine.ScrollTop())
	})
}

func TestResize(t *testing.T) {
	ctx := context.Background()

	t.Run("寬度不變時不重排", func(t *testing.T) {
		f := newFixture(t, 4, 1000)
		require.NoError(t, f.engine.Open(ctx))
		calls := len(f.renderer.calls)

		assert.Nil(t, f.engine.Resize(60, 500))
		assert.Len(t, f.renderer.calls, calls)
	})

	t.Run("寬度變化時按新寬度重新渲染", func(t *testing.T) {
		f := newFixture(t, 4, 6)
		f.coll.get("m4").sections = 1
		require.NoError(t, f.engine.Open(ctx))
		require.NoError(t, f.engine.ToggleSection(ctx, "m4", 0))

		ch := f.engine.Resize(80, 6)
		require.NotNil(t, ch)
		require.NoError(t, <-ch)

		assert.Equal(t, []int{80, 80, 80, 80}, f.renderer.lastWidths(4))
		assert.Equal(t, ids(1, 4), f.engine.Snapshot())
		assert.True(t, f.engine.view.Get("m4").Sections[0].Expanded)
		assert.True(t, f.engine.IsAtBottom())
		assert.Equal(t, f.engine.ScrollHeight()-6, f.engine.ScrollTop())
	})
}

func TestScrollToBottomIfAtBottom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, 6)
	require.NoError(t, f.engine.Open(ctx))

	assert.Nil(t, f.engine.ScrollBy(-3))
	require.NoError(t, f.engine.ScrollToBottom(ctx, ScrollOptions{IfAtBottom: true}))
	assert.Equal(t, 3, f.engine.ScrollTop())
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("新條目在視圖上方時觸發提示", func(t *testing.T) {
		f := newFixture(t, 10, 6)
		require.NoError(t, f.engine.Open(ctx))
		assert.Nil(t, f.engine.ScrollBy(-3))

		m11 := newItem(11)
		f.coll.add(m11)
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventCreated, Item: m11}))

		assert.Equal(t, ids(7, 11), f.engine.Snapshot())
		assert.Equal(t, 3, f.engine.ScrollTop())
		assert.Equal(t, []string{"m11"}, f.unseenIDs())
	})

	t.Run("查看者自己的條目總是滾動到底部", func(t *testing.T) {
		f := newFixture(t, 10, 6)
		require.NoError(t, f.engine.Open(ctx))
		assert.Nil(t, f.engine.ScrollBy(-3))

		m11 := newItem(11)
		m11.author = "gm"
		f.coll.add(m11)
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventCreated, Item: m11}))

		assert.True(t, f.engine.IsAtBottom())
		assert.Empty(t, f.unseenIDs())
	})

	t.Run("非成員條目被忽略", func(t *testing.T) {
		f := newFixture(t, 3, 1000)
		require.NoError(t, f.engine.Open(ctx))

		m4 := newItem(4)
		m4.pinned = false
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventCreated, Item: m4}))
		assert.Equal(t, ids(1, 3), f.engine.Snapshot())
	})

	t.Run("取消置頂的更新移除節點", func(t *testing.T) {
		f := newFixture(t, 5, 1000)
		require.NoError(t, f.engine.Open(ctx))

		m4 := f.coll.get("m4")
		m4.pinned = false
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventUpdated, Item: m4}))
		assert.Equal(t, []string{"m2", "m3", "m5"}, f.engine.Snapshot())
		requireInvariants(t, f)
	})

	t.Run("變為不可見的更新移除節點", func(t *testing.T) {
		f := newFixture(t, 5, 1000)
		require.NoError(t, f.engine.Open(ctx))

		m2 := f.coll.get("m2")
		m2.visible = false
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventUpdated, Item: m2}))
		assert.Equal(t, ids(3, 5), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m3", bm)
	})

	t.Run("刪除事件", func(t *testing.T) {
		f := newFixture(t, 5, 1000)
		require.NoError(t, f.engine.Open(ctx))

		f.coll.remove("m5")
		require.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventDeleted, ID: "m5"}))
		assert.Equal(t, ids(2, 4), f.engine.Snapshot())
	})

	t.Run("未知事件類型", func(t *testing.T) {
		f := newFixture(t, 1, 1000)
		err := <-f.engine.Dispatch(ctx, Event{Kind: EventKind(42)})
		assert.Error(t, err)
		assert.Equal(t, "EventKind(42)", EventKind(42).String())
	})
}

func TestSerialization(t *testing.T) {
	ctx := context.Background()

	t.Run("刪除等待在途批次完成", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		entered, release := f.renderer.block()
		batchDone := make(chan error, 1)
		go func() { batchDone <- f.engine.RenderNextBatch(ctx, 4) }()
		<-entered

		// 批次渲染 m3..m6 期間刪除 m3
		f.coll.remove("m3")
		deleted := f.engine.Dispatch(ctx, Event{Kind: EventDeleted, ID: "m3"})

		// 加載在途時的重複請求直接返回
		assert.True(t, f.engine.Loading())
		require.NoError(t, f.engine.RenderNextBatch(ctx, 4))

		release()
		require.NoError(t, <-batchDone)
		require.NoError(t, <-deleted)

		assert.Equal(t, ids(4, 10), f.engine.Snapshot())
		bm, _ := f.engine.Bookmark()
		assert.Equal(t, "m4", bm)
		requireInvariants(t, f)
	})

	t.Run("隨機操作序列保持連續後綴", func(t *testing.T) {
		f := newFixture(t, 40, 100000)
		rng := rand.New(rand.NewSource(7))
		next := 41

		for step := 0; step < 200; step++ {
			switch rng.Intn(3) {
			case 0:
				require.NoError(t, f.engine.RenderNextBatch(ctx, 1+rng.Intn(5)))
			case 1:
				items := f.coll.Contents()
				if len(items) == 0 {
					continue
				}
				id := items[rng.Intn(len(items))].ItemID()
				f.coll.remove(id)
				require.NoError(t, f.engine.DeleteItem(ctx, id))
			case 2:
				it := newItem(next)
				next++
				f.coll.add(it)
				require.NoError(t, f.engine.PostOne(ctx, it, PostOptions{}))
			}
			requireInvariants(t, f)
		}
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("關閉後操作均為空操作", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		require.NoError(t, f.engine.Open(ctx))
		f.engine.Close()
		assert.True(t, f.engine.Closed())

		m11 := newItem(11)
		f.coll.add(m11)
		assert.NoError(t, f.engine.PostOne(ctx, m11, PostOptions{}))
		assert.NoError(t, f.engine.UpdateItem(ctx, f.coll.get("m10")))
		assert.NoError(t, f.engine.DeleteItem(ctx, "m9"))
		assert.NoError(t, f.engine.RenderNextBatch(ctx, 4))
		assert.NoError(t, f.engine.ScrollToBottom(ctx, ScrollOptions{}))
		assert.NoError(t, <-f.engine.Dispatch(ctx, Event{Kind: EventDeleted, ID: "m8"}))

		assert.Empty(t, f.engine.Snapshot())
		assert.Zero(t, f.engine.Materialized())
		_, ok := f.engine.Bookmark()
		assert.False(t, ok)
	})

	t.Run("在途批次在關閉後安全結束", func(t *testing.T) {
		f := newFixture(t, 10, 1000)
		entered, release := f.renderer.block()
		done := make(chan error, 1)
		go func() { done <- f.engine.RenderNextBatch(ctx, 4) }()
		<-entered

		f.engine.Close()
		release()

		require.NoError(t, <-done)
		assert.Empty(t, f.engine.Snapshot())
		assert.Zero(t, f.engine.Materialized())
		assert.False(t, f.engine.Loading())
	})
}
