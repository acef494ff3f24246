package chatstore

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
)

// DefaultUsers 演示與空種子時使用的用戶
func DefaultUsers() []*chat.User {
	return []*chat.User{
		{ID: "gm", Name: "主持人", Role: chat.RoleGameMaster},
		{ID: "alice", Name: "Alice", Role: chat.RolePlayer},
		{ID: "bob", Name: "Bob", Role: chat.RoleTrusted},
	}
}

var demoLines = []string{
	"大家準備好了嗎？今晚繼續地下城的探索。",
	"我要檢查一下這扇門有沒有陷阱。",
	"火把的光照亮了牆上古老的符文，上面寫著一段警告。",
	"記得上次那個商人說過，北邊的橋已經斷了。",
	"我施放偵測魔法。",
	"這條走廊比看起來長得多，盡頭傳來水滴聲。",
	"休息十分鐘，回來之後打 Boss。",
	"Bob 的角色還剩多少生命值？",
}

var demoRolls = []string{"1d20", "1d20+5", "2d6", "1d100", "4d6kh3"}

// Demo 模擬聊天流量：發言、擲骰、密語、置頂、編輯與刪除
type Demo struct {
	store    *Store
	rng      *rand.Rand
	interval time.Duration
	logger   *zap.Logger
}

// NewDemo 創建演示流量生成器
func NewDemo(store *Store, interval time.Duration, seed int64, log *zap.Logger) *Demo {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Demo{
		store:    store,
		rng:      rand.New(rand.NewSource(seed)),
		interval: interval,
		logger:   log.Named("demo"),
	}
}

// Run 按間隔生成事件直到 ctx 結束
func (d *Demo) Run(ctx context.Context) error {
	if len(d.store.Users()) == 0 {
		for _, u := range DefaultUsers() {
			if err := d.store.AddUser(u); err != nil {
				return err
			}
		}
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Step(ctx); err != nil {
				d.logger.Warn("演示事件失敗", zap.Error(err))
			}
		}
	}
}

// Step 生成一個隨機事件
func (d *Demo) Step(ctx context.Context) error {
	msgs := d.store.snapshot()
	roll := d.rng.Intn(100)

	switch {
	case roll < 60 || len(msgs) == 0:
		_, err := d.store.Create(ctx, d.randomMessage())
		return err

	case roll < 75:
		m := msgs[d.rng.Intn(len(msgs))]
		if m.IsPinned() {
			return nil
		}
		_, err := d.store.SetFlag(ctx, m.ID, chat.FlagPinned, d.pinner())
		return err

	case roll < 85:
		pinned := filterPinned(msgs)
		if len(pinned) == 0 {
			return nil
		}
		_, err := d.store.UnsetFlag(ctx, pinned[d.rng.Intn(len(pinned))].ID, chat.FlagPinned)
		return err

	case roll < 95:
		m := msgs[d.rng.Intn(len(msgs))]
		_, err := d.store.Update(ctx, m.ID, func(m *chat.Message) {
			m.Content += "（已編輯）"
		})
		return err

	default:
		return d.store.Delete(ctx, msgs[d.rng.Intn(len(msgs))].ID)
	}
}

func (d *Demo) randomMessage() *chat.Message {
	users := d.users()
	author := users[d.rng.Intn(len(users))]

	m := &chat.Message{
		Author:  author.ID,
		Content: demoLines[d.rng.Intn(len(demoLines))],
	}

	if d.rng.Intn(4) == 0 {
		formula := demoRolls[d.rng.Intn(len(demoRolls))]
		total := 1 + d.rng.Intn(20)
		m.Flavor = "擲骰"
		m.Content = fmt.Sprintf("%s 擲出了 %d", author.Name, total)
		m.Rolls = []chat.Roll{{
			Formula: formula,
			Total:   total,
			Detail:  []string{fmt.Sprintf("%s = %d", formula, total)},
		}}
	}

	switch d.rng.Intn(10) {
	case 0:
		target := users[d.rng.Intn(len(users))]
		m.Whisper = []string{target.ID}
	case 1:
		m.Whisper = []string{"gm"}
		m.Blind = len(m.Rolls) > 0
	}
	return m
}

func (d *Demo) pinner() string {
	for _, u := range d.users() {
		if u.IsGM() {
			return u.ID
		}
	}
	return "gm"
}

// users 按 id 排序，保證相同種子產生相同序列
func (d *Demo) users() []*chat.User {
	users := d.store.Users()
	if len(users) == 0 {
		users = DefaultUsers()
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func filterPinned(msgs []*chat.Message) []*chat.Message {
	var out []*chat.Message
	for _, m := range msgs {
		if m.IsPinned() {
			out = append(out, m)
		}
	}
	return out
}
