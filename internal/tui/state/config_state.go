package state

import (
	"time"

	domainConfig "github.com/Yat-Muk/chatpins/internal/domain/config"
)

// ConfigState 界面使用的配置快照
type ConfigState struct {
	Current *domainConfig.Config
}

func NewConfigState(cfg *domainConfig.Config) *ConfigState {
	if cfg == nil {
		cfg = domainConfig.DefaultConfig()
	}
	return &ConfigState{Current: cfg}
}

// UpdateConfig 替換配置快照
func (s *ConfigState) UpdateConfig(cfg *domainConfig.Config) {
	if cfg != nil {
		s.Current = cfg
	}
}

// TimestampRefresh 相對時間刷新間隔
func (s *ConfigState) TimestampRefresh() time.Duration {
	if s.Current.Chat.TimestampRefresh <= 0 {
		return domainConfig.DefaultTimestampRefresh
	}
	return s.Current.Chat.TimestampRefresh
}
