package chat

import (
	"context"
	"time"
)

// FlagPinned 置頂標記，值為置頂者的用戶 id
const FlagPinned = "pinned"

// Repository 聊天消息倉庫接口
type Repository interface {
	// Get 按 id 獲取消息副本
	Get(ctx context.Context, id string) (*Message, error)

	// List 按到達順序返回全部消息副本
	List(ctx context.Context) ([]*Message, error)

	// SetFlag 設置消息標記
	SetFlag(ctx context.Context, id, key, value string) (*Message, error)

	// UnsetFlag 移除消息標記
	UnsetFlag(ctx context.Context, id, key string) (*Message, error)

	// DeleteMany 批量刪除消息
	DeleteMany(ctx context.Context, ids []string) error

	// User 按 id 查找用戶
	User(ctx context.Context, id string) (*User, error)
}

// Roll 擲骰結果
type Roll struct {
	Formula string   `yaml:"formula"`
	Total   int      `yaml:"total"`
	Detail  []string `yaml:"detail,omitempty"`
}

// Message 聊天消息
type Message struct {
	ID string `yaml:"id"`
	// Author 發送者用戶 id
	Author string `yaml:"author"`
	// Speaker 角色名，為空時顯示發送者
	Speaker   string    `yaml:"speaker,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
	Flavor    string    `yaml:"flavor,omitempty"`
	Content   string    `yaml:"content"`
	// Whisper 密語接收者
	Whisper []string `yaml:"whisper,omitempty"`
	// Blind 暗骰，只有主持人可見
	Blind bool              `yaml:"blind,omitempty"`
	Rolls []Roll            `yaml:"rolls,omitempty"`
	Flags map[string]string `yaml:"flags,omitempty"`
}

// IsPinned 是否已置頂
func (m *Message) IsPinned() bool {
	if m == nil {
		return false
	}
	_, ok := m.Flags[FlagPinned]
	return ok
}

// PinnedBy 置頂者的用戶 id
func (m *Message) PinnedBy() string {
	if m == nil {
		return ""
	}
	return m.Flags[FlagPinned]
}

// IsWhisper 是否為密語
func (m *Message) IsWhisper() bool {
	return len(m.Whisper) > 0
}

// VisibleTo 判斷用戶能否看到該消息
// 公開消息所有人可見；密語對主持人、發送者和接收者可見；暗骰只對主持人可見。
func (m *Message) VisibleTo(u *User) bool {
	if m == nil || u == nil {
		return false
	}
	if !m.IsWhisper() {
		return true
	}
	if u.IsGM() {
		return true
	}
	if m.Blind {
		return false
	}
	if m.Author == u.ID {
		return true
	}
	for _, id := range m.Whisper {
		if id == u.ID {
			return true
		}
	}
	return false
}

// Clone 深拷貝
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	c.Whisper = append([]string(nil), m.Whisper...)
	if m.Rolls != nil {
		c.Rolls = make([]Roll, len(m.Rolls))
		for i, r := range m.Rolls {
			r.Detail = append([]string(nil), r.Detail...)
			c.Rolls[i] = r
		}
	}
	if m.Flags != nil {
		c.Flags = make(map[string]string, len(m.Flags))
		for k, v := range m.Flags {
			c.Flags[k] = v
		}
	}
	return &c
}
