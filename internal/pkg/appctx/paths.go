package appctx

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvKey 運行環境變量，值為 production 時使用系統目錄
const EnvKey = "CHATPINS_ENV"

// Paths 定義應用程序所有的關鍵路徑
type Paths struct {
	BaseDir string
	DataDir string
	LogDir  string

	ConfigFile string
	SeedFile   string
	LogFile    string
}

// NewPaths 解析並創建應用目錄
// baseDir 為空時，開發環境使用 ~/.chatpins，生產環境使用 /etc/chatpins。
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		if isProduction() {
			baseDir = "/etc/chatpins"
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("無法獲取用戶主目錄: %w", err)
			}
			baseDir = filepath.Join(home, ".chatpins")
		}
	}

	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
	}

	dataDir := filepath.Join(absPath, "data")

	// 日誌目錄邏輯
	logDir := filepath.Join(absPath, "logs")
	if isProduction() {
		logDir = "/var/log/chatpins"
	}

	paths := &Paths{
		BaseDir:    absPath,
		DataDir:    dataDir,
		LogDir:     logDir,
		ConfigFile: filepath.Join(absPath, "config.yaml"),
		SeedFile:   filepath.Join(dataDir, "messages.yaml"),
		LogFile:    filepath.Join(logDir, "chatpins.log"),
	}

	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir} {
		perm := os.FileMode(0700)
		if dir == paths.LogDir {
			perm = 0755
		}
		if err := os.MkdirAll(dir, perm); err != nil {
			return nil, fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}

	return paths, nil
}

// Resolve 將相對路徑解析到基礎目錄下
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

func isProduction() bool {
	return os.Getenv(EnvKey) == "production"
}
