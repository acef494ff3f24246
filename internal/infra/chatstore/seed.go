package chatstore

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
)

// Seed 初始數據文件結構
type Seed struct {
	Users    []*chat.User    `yaml:"users"`
	Messages []*chat.Message `yaml:"messages"`
}

// LoadSeedFile 從 YAML 文件載入用戶與消息
// 文件不存在時不報錯。
func (s *Store) LoadSeedFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.logger.Info("種子文件不存在，跳過", zap.String("path", path))
		return nil
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidSeed, "讀取種子文件失敗")
	}
	if err := s.LoadSeed(ctx, data); err != nil {
		return err
	}
	s.logger.Info("種子數據已載入",
		zap.String("path", path),
		zap.Int("messages", s.Len()),
	)
	return nil
}

// LoadSeed 解析並載入種子數據，消息按文件順序追加
func (s *Store) LoadSeed(ctx context.Context, data []byte) error {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidSeed, "解析種子數據失敗")
	}

	for _, u := range seed.Users {
		if err := s.AddUser(u); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInvalidSeed, "種子用戶無效")
		}
	}
	for i, m := range seed.Messages {
		if m == nil {
			continue
		}
		if _, err := s.User(ctx, m.Author); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInvalidSeed, fmt.Sprintf("第 %d 條消息的發送者未知", i+1))
		}
		if _, err := s.Create(ctx, m); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInvalidSeed, fmt.Sprintf("第 %d 條消息無效", i+1))
		}
	}
	return nil
}
