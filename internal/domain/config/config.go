package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
)

// Repository 配置倉庫接口
type Repository interface {
	// Load 加載配置
	Load(ctx context.Context) (*Config, error)

	// Save 保存配置
	Save(ctx context.Context, cfg *Config) error
}

// Config 主配置結構
type Config struct {
	Version int          `yaml:"version"`
	Log     LogConfig    `yaml:"log"`
	Chat    ChatConfig   `yaml:"chat"`
	Viewer  ViewerConfig `yaml:"viewer"`
	Store   StoreConfig  `yaml:"store"`
}

// LogConfig 日誌配置
type LogConfig struct {
	Level      string `yaml:"level"`
	OutputPath string `yaml:"output_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// ChatConfig 置頂日誌配置
type ChatConfig struct {
	// BatchSize 每次向上加載的消息數
	BatchSize int `yaml:"batch_size"`
	// TimestampRefresh 相對時間刷新間隔
	TimestampRefresh time.Duration `yaml:"timestamp_refresh"`
	// PinPermission 允許置頂/取消置頂的最低角色 (1-4)，5 表示禁止所有人
	PinPermission int `yaml:"pin_permission"`
	WrapWidth     int `yaml:"wrap_width"`
}

// ViewerConfig 查看者配置
type ViewerConfig struct {
	UserID string `yaml:"user_id"`
}

// StoreConfig 消息存儲配置
type StoreConfig struct {
	// SeedFile 啟動時載入的消息文件，相對路徑基於配置目錄
	SeedFile string `yaml:"seed_file"`
	// DemoInterval 演示模式下模擬消息的間隔
	DemoInterval time.Duration `yaml:"demo_interval"`
}

const (
	DefaultBatchSize        = 100
	DefaultTimestampRefresh = 15 * time.Second
	DefaultPinPermission    = 4
	DefaultWrapWidth        = 60
	DefaultDemoInterval     = 3 * time.Second

	minTimestampRefresh = time.Second
	maxRole             = 5
)

// DefaultConfig 返回默認配置
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersionLatest,
		Log: LogConfig{
			Level:      "info",
			OutputPath: "",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		Chat: ChatConfig{
			BatchSize:        DefaultBatchSize,
			TimestampRefresh: DefaultTimestampRefresh,
			PinPermission:    DefaultPinPermission,
			WrapWidth:        DefaultWrapWidth,
		},
		Viewer: ViewerConfig{
			UserID: "gm",
		},
		Store: StoreConfig{
			SeedFile:     "data/messages.yaml",
			DemoInterval: DefaultDemoInterval,
		},
	}
}

// FillDefaults 為缺省字段填充默認值
func (c *Config) FillDefaults() {
	def := DefaultConfig()

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = def.Log.MaxSize
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = def.Log.MaxAge
	}
	if c.Chat.BatchSize == 0 {
		c.Chat.BatchSize = def.Chat.BatchSize
	}
	if c.Chat.TimestampRefresh == 0 {
		c.Chat.TimestampRefresh = def.Chat.TimestampRefresh
	}
	if c.Chat.PinPermission == 0 {
		c.Chat.PinPermission = def.Chat.PinPermission
	}
	if c.Chat.WrapWidth == 0 {
		c.Chat.WrapWidth = def.Chat.WrapWidth
	}
	if c.Viewer.UserID == "" {
		c.Viewer.UserID = def.Viewer.UserID
	}
	if c.Store.DemoInterval == 0 {
		c.Store.DemoInterval = def.Store.DemoInterval
	}
}

// Validate 驗證配置，返回所有問題的匯總
func (c *Config) Validate() error {
	if c == nil {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, apperrors.CodeConfig, "配置為空")
	}

	var problems []string
	if c.Chat.BatchSize <= 0 {
		problems = append(problems, fmt.Sprintf("chat.batch_size 必須為正數 (當前 %d)", c.Chat.BatchSize))
	}
	if c.Chat.PinPermission < 1 || c.Chat.PinPermission > maxRole {
		problems = append(problems, fmt.Sprintf("chat.pin_permission 必須在 1-%d 之間 (當前 %d)", maxRole, c.Chat.PinPermission))
	}
	if c.Chat.TimestampRefresh < minTimestampRefresh {
		problems = append(problems, fmt.Sprintf("chat.timestamp_refresh 不能小於 %s", minTimestampRefresh))
	}
	if c.Chat.WrapWidth < 0 {
		problems = append(problems, "chat.wrap_width 不能為負數")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level 無效: %q", c.Log.Level))
	}
	if c.Viewer.UserID == "" {
		problems = append(problems, "viewer.user_id 不能為空")
	}

	if len(problems) > 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, apperrors.CodeConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DeepCopy 深拷貝配置
// 使用 YAML 序列化回環，保證副本與磁盤保存的行為一致。
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Errorf("DeepCopy 序列化失敗 (這是一個 Bug): %w", err))
	}

	var newCfg Config
	if err := yaml.Unmarshal(data, &newCfg); err != nil {
		panic(fmt.Errorf("DeepCopy 反序列化失敗 (這是一個 Bug): %w", err))
	}

	return &newCfg
}
