package chatstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/domain/validator"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
	"github.com/Yat-Muk/chatpins/internal/pkg/logger"
)

// Store 內存中的聊天消息集合
// 消息按到達順序保存；所有讀取返回副本，修改後向訂閱者發布事件。
type Store struct {
	// pubMu 串行化 "修改 + 發布"，保證事件順序與修改順序一致
	pubMu sync.Mutex
	mu    sync.RWMutex

	order    []string
	messages map[string]*chat.Message
	users    map[string]*chat.User
	subs     map[*subscriber]struct{}

	logger *zap.Logger
	now    func() time.Time
}

// New 創建存儲
func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		messages: make(map[string]*chat.Message),
		users:    make(map[string]*chat.User),
		subs:     make(map[*subscriber]struct{}),
		logger:   log.Named("chatstore"),
		now:      time.Now,
	}
}

// Close 關閉所有訂閱
func (s *Store) Close() {
	s.closeSubscribers()
}

// ========================================
// 用戶
// ========================================

// AddUser 添加或替換用戶
func (s *Store) AddUser(u *chat.User) error {
	if u == nil {
		return apperrors.New(apperrors.CodeStore, "用戶為空")
	}
	if err := validator.ValidateID(u.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStore, "用戶 id 無效")
	}
	if !u.Role.Valid() {
		return apperrors.New(apperrors.CodeStore, fmt.Sprintf("用戶 %s 角色無效: %d", u.ID, u.Role))
	}
	cp := *u
	s.mu.Lock()
	s.users[u.ID] = &cp
	s.mu.Unlock()
	return nil
}

// User 按 id 查找用戶
func (s *Store) User(ctx context.Context, id string) (*chat.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrUserNotFound, apperrors.CodeStore, fmt.Sprintf("用戶 %s 不存在", id))
	}
	cp := *u
	return &cp, nil
}

// Users 返回全部用戶
func (s *Store) Users() []*chat.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*chat.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out
}

// ========================================
// 消息讀取
// ========================================

// Get 按 id 獲取消息副本
func (s *Store) Get(ctx context.Context, id string) (*chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, errNotFound(id)
	}
	return m.Clone(), nil
}

// List 按到達順序返回全部消息副本
func (s *Store) List(ctx context.Context) ([]*chat.Message, error) {
	return s.snapshot(), nil
}

// Len 消息數量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) snapshot() []*chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*chat.Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.messages[id].Clone())
	}
	return out
}

// ========================================
// 消息修改
// ========================================

// Create 追加新消息，未指定 id 或時間戳時自動生成
func (s *Store) Create(ctx context.Context, m *chat.Message) (*chat.Message, error) {
	if m == nil {
		return nil, apperrors.New(apperrors.CodeMessage, "消息為空")
	}

	if m.ID != "" {
		if err := validator.ValidateID(m.ID); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeMessage, "消息 id 無效")
		}
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	msg := m.Clone()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if _, exists := s.messages[msg.ID]; exists {
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.CodeMessage, fmt.Sprintf("消息 %s 已存在", msg.ID))
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.messages[msg.ID] = msg
	s.order = append(s.order, msg.ID)
	out := msg.Clone()
	s.mu.Unlock()

	content := logger.Excerpt("content", msg.Content)
	if msg.IsWhisper() {
		content = logger.Private("content", msg.Content)
	}
	s.logger.Debug("新消息",
		zap.String("id", msg.ID),
		zap.String("author", msg.Author),
		content,
	)
	s.publish(Event{Kind: Created, Message: out})
	return out, nil
}

// Update 修改消息並發布更新事件
func (s *Store) Update(ctx context.Context, id string, fn func(*chat.Message)) (*chat.Message, error) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	cur, ok := s.messages[id]
	if !ok {
		s.mu.Unlock()
		return nil, errNotFound(id)
	}
	next := cur.Clone()
	fn(next)
	// id 不可修改
	next.ID = id
	s.messages[id] = next
	out := next.Clone()
	s.mu.Unlock()

	s.publish(Event{Kind: Updated, Message: out})
	return out, nil
}

// SetFlag 設置消息標記
func (s *Store) SetFlag(ctx context.Context, id, key, value string) (*chat.Message, error) {
	return s.Update(ctx, id, func(m *chat.Message) {
		if m.Flags == nil {
			m.Flags = make(map[string]string)
		}
		m.Flags[key] = value
	})
}

// UnsetFlag 移除消息標記
func (s *Store) UnsetFlag(ctx context.Context, id, key string) (*chat.Message, error) {
	return s.Update(ctx, id, func(m *chat.Message) {
		delete(m.Flags, key)
	})
}

// Delete 刪除消息
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany 批量刪除，任一 id 不存在時不刪除任何消息
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	doomed := make(map[string]*chat.Message, len(ids))
	for _, id := range ids {
		m, ok := s.messages[id]
		if !ok {
			s.mu.Unlock()
			return errNotFound(id)
		}
		doomed[id] = m
	}

	kept := s.order[:0:0]
	var removed []*chat.Message
	for _, id := range s.order {
		if m, ok := doomed[id]; ok {
			removed = append(removed, m)
			delete(s.messages, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	s.mu.Unlock()

	s.logger.Debug("刪除消息", zap.Int("count", len(removed)))
	for _, m := range removed {
		s.publish(Event{Kind: Deleted, Message: m})
	}
	return nil
}

func errNotFound(id string) error {
	return apperrors.Wrap(apperrors.ErrMessageNotFound, apperrors.CodeMessage, fmt.Sprintf("消息 %s 不存在", id))
}
