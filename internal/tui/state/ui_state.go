package state

// StatusType 狀態類型
type StatusType int

const (
	StatusReady StatusType = iota
	StatusSuccess
	StatusError
	StatusInfo
	StatusWarn
)

// StatusMsg 狀態欄消息
type StatusMsg struct {
	Type    StatusType
	Message string
}

// chrome 標題、分隔線、狀態欄與幫助行佔用的行數
const chrome = 5

// UIState UI 核心狀態
type UIState struct {
	Width    int
	Height   int
	Status   StatusMsg
	ShowHelp bool
}

// NewUIState 創建 UI 狀態
func NewUIState() *UIState {
	return &UIState{
		Width:  80,
		Height: 24,
		Status: StatusMsg{Type: StatusReady},
	}
}

// SetStatus 設置狀態欄消息
func (s *UIState) SetStatus(t StatusType, msg string) {
	s.Status = StatusMsg{Type: t, Message: msg}
}

// ClearStatus 清空狀態欄消息
func (s *UIState) ClearStatus() {
	s.Status = StatusMsg{Type: StatusReady}
}

// UpdateSize 更新尺寸
func (s *UIState) UpdateSize(w, h int) {
	s.Width = w
	s.Height = h
}

// BodyHeight 日誌區域可用行數
func (s *UIState) BodyHeight() int {
	h := s.Height - chrome
	if s.ShowHelp {
		h -= 2
	}
	if h < 1 {
		h = 1
	}
	return h
}
