package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	domainConfig "github.com/Yat-Muk/chatpins/internal/domain/config"
)

// InboxSize 後台事件收件箱容量
const InboxSize = 256

// Config 初始化配置
type Config struct {
	Log           *zap.Logger
	InitialConfig *domainConfig.Config
	Viewer        *chat.User
	Version       string
}

// Manager 狀態管理器 (State Container)
type Manager struct {
	log *zap.Logger

	ui       *UIState
	config   *ConfigState
	logState *LogState

	viewer  *chat.User
	version string

	// inbox 後台協程 (事件分發、引擎回調) 投遞給界面的消息
	inbox chan tea.Msg
}

// NewManager 創建狀態管理器
func NewManager(cfg *Config) *Manager {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:      log,
		ui:       NewUIState(),
		config:   NewConfigState(cfg.InitialConfig),
		logState: NewLogState(),
		viewer:   cfg.Viewer,
		version:  cfg.Version,
		inbox:    make(chan tea.Msg, InboxSize),
	}
}

// Getters 訪問器

func (m *Manager) UI() *UIState         { return m.ui }
func (m *Manager) Config() *ConfigState { return m.config }
func (m *Manager) Log() *LogState       { return m.logState }
func (m *Manager) Viewer() *chat.User   { return m.viewer }
func (m *Manager) Version() string      { return m.version }

// Inbox 後台消息通道
func (m *Manager) Inbox() <-chan tea.Msg { return m.inbox }

// Post 投遞後台消息，收件箱已滿時丟棄並返回 false
// 可從任意協程調用。
func (m *Manager) Post(msg tea.Msg) bool {
	select {
	case m.inbox <- msg:
		return true
	default:
		m.log.Warn("界面收件箱已滿，丟棄消息")
		return false
	}
}
