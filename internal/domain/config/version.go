package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigVersionLatest 最新配置版本
	ConfigVersionLatest = 2

	// ConfigVersionV1 V1 版本：pin_permission 以角色名字符串保存
	ConfigVersionV1 = 1
)

// v1 的角色名
var legacyRoleNames = map[string]int{
	"player":     1,
	"trusted":    2,
	"assistant":  3,
	"gamemaster": 4,
	"none":       5,
}

// LegacyConfig V1 配置中與 V2 不兼容的字段
type LegacyConfig struct {
	Chat struct {
		PinPermission string `yaml:"pin_permission"`
	} `yaml:"chat"`
}

// Migrator 配置遷移器
type Migrator struct{}

// NewMigrator 創建遷移器
func NewMigrator() *Migrator {
	return &Migrator{}
}

// MigrateToLatest 自動遷移到最新版本
// legacy 為按 V1 結構解析出的字段，V2 配置可傳 nil。
func (m *Migrator) MigrateToLatest(cfg *Config, legacy *LegacyConfig) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置為空，無法遷移")
	}

	if cfg.Version == ConfigVersionLatest {
		return cfg, nil
	}

	if cfg.Version == ConfigVersionV1 || cfg.Version == 0 {
		return m.migrateV1ToV2(cfg, legacy)
	}

	return nil, fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", cfg.Version, ConfigVersionLatest)
}

func (m *Migrator) migrateV1ToV2(oldCfg *Config, legacy *LegacyConfig) (*Config, error) {
	newCfg := oldCfg.DeepCopy()
	newCfg.Version = ConfigVersionLatest

	if legacy != nil && legacy.Chat.PinPermission != "" {
		role, ok := legacyRoleNames[strings.ToLower(legacy.Chat.PinPermission)]
		if !ok {
			role, ok = parseRoleLevel(legacy.Chat.PinPermission)
		}
		if !ok {
			return nil, fmt.Errorf("無法識別的置頂權限角色: %q", legacy.Chat.PinPermission)
		}
		newCfg.Chat.PinPermission = role
	}

	newCfg.FillDefaults()
	return newCfg, nil
}

// NeedsMigration 檢查是否需要遷移
func (m *Migrator) NeedsMigration(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Version < ConfigVersionLatest
}

// GetMigrationPath 獲取遷移路徑描述
func (m *Migrator) GetMigrationPath(fromVersion int) string {
	if fromVersion >= ConfigVersionLatest {
		return "無需遷移"
	}
	if fromVersion == ConfigVersionV1 || fromVersion == 0 {
		return "V1 -> V2: 置頂權限角色名轉換為角色等級，填充默認值"
	}
	return fmt.Sprintf("未知遷移路徑 (v%d -> v%d)", fromVersion, ConfigVersionLatest)
}

func parseRoleLevel(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > maxRole {
		return 0, false
	}
	return n, true
}

// Parse 解析配置文件內容，舊版本自動遷移到最新版本
func Parse(data []byte) (*Config, error) {
	var probe struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	if probe.Version >= ConfigVersionLatest {
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	var legacy LegacyConfig
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}

	// 去掉類型不兼容的字段後再按新結構解碼
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	dropKey(&doc, "chat", "pin_permission")

	var cfg Config
	if doc.Kind != 0 {
		if err := doc.Decode(&cfg); err != nil {
			return nil, err
		}
	}
	return NewMigrator().MigrateToLatest(&cfg, &legacy)
}

// dropKey 按路徑刪除映射節點中的鍵
func dropKey(n *yaml.Node, path ...string) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return
		}
		n = n.Content[0]
	}
	for depth, key := range path {
		if n.Kind != yaml.MappingNode {
			return
		}
		found := false
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value != key {
				continue
			}
			if depth == len(path)-1 {
				n.Content = append(n.Content[:i], n.Content[i+2:]...)
				return
			}
			n = n.Content[i+1]
			found = true
			break
		}
		if !found {
			return
		}
	}
}
