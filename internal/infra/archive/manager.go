// Package archive 清空聊天記錄前的加密歸檔
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/domain/validator"
	"github.com/Yat-Muk/chatpins/internal/pkg/crypto"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
)

const (
	ArchiveFileMode os.FileMode = 0600
	ArchiveDirMode  os.FileMode = 0700
	ChecksumSuffix              = ".sha256"
	archiveExt                  = ".bak"
	lastHashFile                = ".last-hash"
)

// RetentionPolicy 歸檔保留策略，零值表示不限制
type RetentionPolicy struct {
	MaxFiles int
	MaxAge   time.Duration
}

// File 歸檔文件信息
type File struct {
	Name     string
	Path     string
	ModTime  time.Time
	Size     int64
	Verified bool
}

// document 歸檔內容 (加密前)
type document struct {
	ArchivedAt time.Time       `yaml:"archived_at"`
	Tag        string          `yaml:"tag,omitempty"`
	Messages   []*chat.Message `yaml:"messages"`
}

// Manager 歸檔管理器
type Manager struct {
	dir       string
	retention RetentionPolicy
	encryptor *crypto.Encryptor
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager 創建歸檔管理器
func NewManager(dir, keyPath string, retention RetentionPolicy, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	encryptor, err := crypto.NewEncryptor(keyPath)
	if err != nil {
		return nil, fmt.Errorf("加密器初始化失敗: %w", err)
	}
	if err := os.MkdirAll(dir, ArchiveDirMode); err != nil {
		return nil, fmt.Errorf("創建歸檔目錄失敗: %w", err)
	}
	log = log.Named("archive")
	log.Debug("歸檔密鑰已就緒", zap.String("key", encryptor.Fingerprint()))
	return &Manager{
		dir:       dir,
		retention: retention,
		encryptor: encryptor,
		logger:    log,
		now:       time.Now,
	}, nil
}

// Dir 歸檔目錄
func (m *Manager) Dir() string {
	return m.dir
}

// Archive 加密保存一組消息，返回歸檔文件名
// 內容與上一次歸檔相同時跳過並返回空文件名。
func (m *Manager) Archive(msgs []*chat.Message, tag string) (string, error) {
	if len(msgs) == 0 {
		return "", nil
	}
	if err := validator.ValidateTag(tag); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStore, "歸檔標籤無效")
	}

	plain, err := yaml.Marshal(msgs)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStore, "序列化歸檔失敗")
	}
	hash := sha256.Sum256(plain)
	hashStr := hex.EncodeToString(hash[:])
	if m.isDuplicateContent(hashStr) {
		m.logger.Debug("歸檔內容未變化，跳過")
		return "", nil
	}

	now := m.now()
	name := fmt.Sprintf("chat-%s%s", now.Format("20060102-150405.000"), archiveExt)
	if tag != "" {
		name = fmt.Sprintf("chat-%s-%s%s", now.Format("20060102-150405.000"), tag, archiveExt)
	}
	dst := filepath.Join(m.dir, name)

	doc, err := yaml.Marshal(document{ArchivedAt: now.UTC(), Tag: tag, Messages: msgs})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStore, "序列化歸檔失敗")
	}
	data, err := m.encryptor.Seal(doc, name)
	if err != nil {
		return "", fmt.Errorf("加密失敗: %w", err)
	}

	if err := os.WriteFile(dst, data, ArchiveFileMode); err != nil {
		return "", fmt.Errorf("寫入歸檔失敗: %w", err)
	}
	if err := m.saveChecksum(dst, data); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("生成校驗文件失敗: %w", err)
	}

	m.saveLastHash(hashStr)
	m.enforcePolicy()

	m.logger.Info("聊天記錄已歸檔", zap.String("file", name), zap.Int("messages", len(msgs)))
	return name, nil
}

// Restore 校驗並解密歸檔，返回其中的消息
func (m *Manager) Restore(name string) ([]*chat.Message, error) {
	if err := validator.ValidateSafePath(m.dir, name); err != nil || !strings.HasSuffix(name, archiveExt) {
		return nil, apperrors.New(apperrors.CodeStore, fmt.Sprintf("歸檔文件名無效: %s", name))
	}
	src := filepath.Join(m.dir, name)
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("讀取歸檔文件失敗: %w", err)
	}
	if err := m.verifyChecksum(src, data); err != nil {
		return nil, err
	}

	plain, err := m.encryptor.Open(data, name)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStore, "解密歸檔失敗")
	}
	var doc document
	if err := yaml.Unmarshal(plain, &doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStore, "解析歸檔失敗")
	}
	return doc.Messages, nil
}

// List 按時間倒序列出歸檔
func (m *Manager) List() ([]File, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []File{}, nil
		}
		return nil, fmt.Errorf("讀取歸檔目錄失敗: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		var verified bool
		if data, err := os.ReadFile(path); err == nil {
			verified = m.verifyChecksum(path, data) == nil
		}

		files = append(files, File{
			Name:     entry.Name(),
			Path:     path,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
			Verified: verified,
		})
	}

	// 文件名含毫秒時間戳，同一秒內的歸檔也能穩定排序
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})
	return files, nil
}

// saveChecksum 校驗文件內容為 "<hmac> <密鑰指紋>"
func (m *Manager) saveChecksum(path string, data []byte) error {
	line := fmt.Sprintf("%s %s\n", m.encryptor.ComputeHMAC(data), m.encryptor.Fingerprint())
	tmp := path + ChecksumSuffix + ".tmp"
	if err := os.WriteFile(tmp, []byte(line), ArchiveFileMode); err != nil {
		return err
	}
	return os.Rename(tmp, path+ChecksumSuffix)
}

func (m *Manager) verifyChecksum(path string, data []byte) error {
	raw, err := os.ReadFile(path + ChecksumSuffix)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStore, "讀取校驗文件失敗")
	}
	fields := strings.Fields(string(raw))
	if len(fields) != 2 {
		return apperrors.New(apperrors.CodeStore, "校驗文件格式無效")
	}
	if fields[1] != m.encryptor.Fingerprint() {
		return apperrors.New(apperrors.CodeStore, fmt.Sprintf("歸檔由其他密鑰創建 (%s)", fields[1]))
	}
	if !m.encryptor.VerifyHMAC(data, fields[0]) {
		return apperrors.New(apperrors.CodeStore, "歸檔完整性校驗失敗")
	}
	return nil
}

func (m *Manager) enforcePolicy() {
	files, err := m.List()
	if err != nil {
		return
	}

	now := m.now()
	for i, f := range files {
		expired := m.retention.MaxAge > 0 && now.Sub(f.ModTime) > m.retention.MaxAge
		if (m.retention.MaxFiles > 0 && i >= m.retention.MaxFiles) || expired {
			os.Remove(f.Path)
			os.Remove(f.Path + ChecksumSuffix)
			m.logger.Debug("刪除過期歸檔", zap.String("file", f.Name))
		}
	}
}

func (m *Manager) isDuplicateContent(hash string) bool {
	last, err := os.ReadFile(filepath.Join(m.dir, lastHashFile))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(last)) == hash
}

func (m *Manager) saveLastHash(hash string) {
	path := filepath.Join(m.dir, lastHashFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(hash), ArchiveFileMode); err == nil {
		os.Rename(tmp, path)
	}
}
