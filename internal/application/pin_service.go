package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/domain/config"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
)

// UnknownPinner 置頂者已不存在時顯示的名稱
const UnknownPinner = "未知"

// Archiver 清空前保存被刪除的消息
type Archiver interface {
	Archive(msgs []*chat.Message, tag string) (string, error)
}

// PinService 消息置頂服務
type PinService struct {
	repo     chat.Repository
	cfg      *config.AtomicContainer
	archiver Archiver
	logger   *zap.Logger
}

// NewPinService 創建置頂服務
// 權限設置每次從配置容器讀取，熱更新立即生效。
func NewPinService(repo chat.Repository, cfg *config.AtomicContainer, logger *zap.Logger) *PinService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PinService{
		repo:   repo,
		cfg:    cfg,
		logger: logger.Named("pins"),
	}
}

// SetArchiver 設置清空前的歸檔器，nil 表示不歸檔
func (s *PinService) SetArchiver(a Archiver) {
	s.archiver = a
}

// permission 當前允許置頂的最低角色
func (s *PinService) permission() chat.Role {
	if s.cfg == nil {
		return chat.Role(config.DefaultPinPermission)
	}
	return chat.Role(s.cfg.Get().Chat.PinPermission)
}

// IsPinned 消息是否已置頂
func (s *PinService) IsPinned(ctx context.Context, id string) (bool, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return m.IsPinned(), nil
}

// CanPin 用戶是否有置頂權限
func (s *PinService) CanPin(u *chat.User) bool {
	return u.HasRole(s.permission())
}

// CanUnpin 用戶能否取消置頂：擁有置頂權限，或者是該消息的置頂者
func (s *PinService) CanUnpin(u *chat.User, m *chat.Message) bool {
	if s.CanPin(u) {
		return true
	}
	return u != nil && m.IsPinned() && m.PinnedBy() == u.ID
}

// Pin 置頂消息
func (s *PinService) Pin(ctx context.Context, actor *chat.User, id string) (*chat.Message, error) {
	if !s.CanPin(actor) {
		return nil, s.denied(actor, "置頂")
	}

	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.IsPinned() {
		return nil, apperrors.Wrap(apperrors.ErrAlreadyPinned, apperrors.CodePin, fmt.Sprintf("消息 %s 已置頂", id))
	}

	pinned, err := s.repo.SetFlag(ctx, id, chat.FlagPinned, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("置頂消息失敗: %w", err)
	}

	s.logger.Info("消息已置頂", zap.String("id", id), zap.String("by", actor.ID))
	return pinned, nil
}

// Unpin 取消置頂
func (s *PinService) Unpin(ctx context.Context, actor *chat.User, id string) (*chat.Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsPinned() {
		return nil, apperrors.Wrap(apperrors.ErrNotPinned, apperrors.CodePin, fmt.Sprintf("消息 %s 未置頂", id))
	}
	if !s.CanUnpin(actor, m) {
		return nil, s.denied(actor, "取消置頂")
	}

	unpinned, err := s.repo.UnsetFlag(ctx, id, chat.FlagPinned)
	if err != nil {
		return nil, fmt.Errorf("取消置頂失敗: %w", err)
	}

	s.logger.Info("消息已取消置頂", zap.String("id", id), zap.String("by", actor.ID))
	return unpinned, nil
}

// Toggle 切換置頂狀態
func (s *PinService) Toggle(ctx context.Context, actor *chat.User, id string) (*chat.Message, error) {
	pinned, err := s.IsPinned(ctx, id)
	if err != nil {
		return nil, err
	}
	if pinned {
		return s.Unpin(ctx, actor, id)
	}
	return s.Pin(ctx, actor, id)
}

// Pinner 置頂者名稱，用戶不存在時返回 "未知"
func (s *PinService) Pinner(ctx context.Context, m *chat.Message) string {
	id := m.PinnedBy()
	if id == "" {
		return UnknownPinner
	}
	u, err := s.repo.User(ctx, id)
	if err != nil || u.Name == "" {
		return UnknownPinner
	}
	return u.Name
}

// FlushExceptPins 清空聊天記錄，保留已置頂消息
// 只有主持人可以執行，返回刪除的消息數量。
func (s *PinService) FlushExceptPins(ctx context.Context, actor *chat.User) (int, error) {
	if !actor.IsGM() {
		return 0, s.denied(actor, "清空聊天記錄")
	}

	msgs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("讀取消息失敗: %w", err)
	}

	var (
		doomed   []string
		archived []*chat.Message
	)
	for _, m := range msgs {
		if !m.IsPinned() {
			doomed = append(doomed, m.ID)
			archived = append(archived, m)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	// 歸檔失敗時不刪除
	if s.archiver != nil {
		name, err := s.archiver.Archive(archived, "flush")
		if err != nil {
			return 0, fmt.Errorf("歸檔聊天記錄失敗: %w", err)
		}
		s.logger.Info("清空前已歸檔", zap.String("file", name))
	}

	if err := s.repo.DeleteMany(ctx, doomed); err != nil {
		return 0, fmt.Errorf("清空聊天記錄失敗: %w", err)
	}

	s.logger.Info("聊天記錄已清空，保留置頂消息",
		zap.Int("deleted", len(doomed)),
		zap.Int("kept", len(msgs)-len(doomed)),
	)
	return len(doomed), nil
}

func (s *PinService) denied(actor *chat.User, action string) error {
	who := "<nil>"
	if actor != nil {
		who = actor.ID
	}
	s.logger.Warn("權限不足", zap.String("user", who), zap.String("action", action))
	return apperrors.Wrap(
		apperrors.ErrPermissionDenied,
		apperrors.CodePermission,
		fmt.Sprintf("用戶 %s 無權%s (需要 %s)", who, action, s.permission()),
	)
}
