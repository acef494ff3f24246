package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPinLog(t *testing.T) {
	base := PinLogData{
		Version:  "v1.0.0",
		Viewer:   "主持人",
		Width:    80,
		Height:   5,
		Body:     "Alice\n│ hello",
		Pinned:   3,
		Loaded:   2,
		AtBottom: true,
	}

	t.Run("正常顯示", func(t *testing.T) {
		out := RenderPinLog(base)
		assert.Contains(t, out, "置頂消息 · 主持人")
		assert.Contains(t, out, "hello")
		assert.Contains(t, out, "共 3 條 · 已加載 2")
		assert.NotContains(t, out, "已滾動")
	})

	t.Run("空日誌", func(t *testing.T) {
		d := base
		d.Pinned = 0
		assert.Contains(t, RenderPinLog(d), "還沒有置頂的消息")
	})

	t.Run("已滾動", func(t *testing.T) {
		d := base
		d.AtBottom = false
		assert.Contains(t, RenderPinLog(d), "已滾動")
	})

	t.Run("新消息提示", func(t *testing.T) {
		d := base
		d.AtBottom = false
		d.Unseen = 2
		out := RenderPinLog(d)
		assert.Contains(t, out, "新訊息 2 ↓")
		assert.NotContains(t, out, "已滾動")
	})

	t.Run("加載中", func(t *testing.T) {
		d := base
		d.Loading = true
		assert.Contains(t, RenderPinLog(d), "加載中…")
	})
}

func TestRenderLoading(t *testing.T) {
	assert.Contains(t, RenderLoading("加載置頂消息中...", 60), "加載置頂消息中...")
	assert.Contains(t, RenderError("boom", 60), "boom")
}
