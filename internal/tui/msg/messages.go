package msg

import "time"

// OpenedMsg 日誌視圖首次渲染完成
type OpenedMsg struct {
	Err error
}

// LogChangedMsg 引擎處理完一個消息事件
type LogChangedMsg struct {
	Kind string
	ID   string
	Err  error
}

// BatchLoadedMsg 滾動觸發的批次加載完成
type BatchLoadedMsg struct {
	Err error
}

// ScrolledMsg 排隊的滾動操作完成 (跳到底部)
type ScrolledMsg struct {
	Err error
}

// UnseenMsg 新消息追加到底部但視圖沒有跟隨
type UnseenMsg struct {
	ID string
}

// SectionToggledMsg 擲骰明細展開/收起完成
type SectionToggledMsg struct {
	ID  string
	Err error
}

// PinResultMsg 置頂/取消置頂結果
type PinResultMsg struct {
	ID     string
	Pinned bool
	Err    error
}

// FlushResultMsg 清空聊天記錄結果
type FlushResultMsg struct {
	Deleted int
	Err     error
}

// TickMsg 相對時間刷新
type TickMsg time.Time
