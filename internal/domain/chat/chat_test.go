package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gm     = &User{ID: "gm", Name: "主持人", Role: RoleGameMaster}
	alice  = &User{ID: "alice", Name: "Alice", Role: RolePlayer}
	bob    = &User{ID: "bob", Name: "Bob", Role: RoleTrusted}
	helper = &User{ID: "helper", Name: "Helper", Role: RoleAssistant}
)

func TestMessageVisibleTo(t *testing.T) {
	t.Run("公開消息", func(t *testing.T) {
		m := &Message{ID: "1", Author: "alice"}
		assert.True(t, m.VisibleTo(bob))
		assert.True(t, m.VisibleTo(gm))
		assert.False(t, m.VisibleTo(nil))
	})

	t.Run("密語", func(t *testing.T) {
		m := &Message{ID: "2", Author: "alice", Whisper: []string{"bob"}}
		assert.True(t, m.VisibleTo(alice), "發送者")
		assert.True(t, m.VisibleTo(bob), "接收者")
		assert.True(t, m.VisibleTo(gm))
		assert.True(t, m.VisibleTo(helper))
		assert.False(t, m.VisibleTo(&User{ID: "carol", Role: RolePlayer}))
	})

	t.Run("暗骰", func(t *testing.T) {
		m := &Message{ID: "3", Author: "alice", Whisper: []string{"gm"}, Blind: true}
		assert.False(t, m.VisibleTo(alice))
		assert.True(t, m.VisibleTo(gm))
	})
}

func TestMessagePinFlags(t *testing.T) {
	m := &Message{ID: "1"}
	assert.False(t, m.IsPinned())
	assert.Empty(t, m.PinnedBy())

	m.Flags = map[string]string{FlagPinned: "gm"}
	assert.True(t, m.IsPinned())
	assert.Equal(t, "gm", m.PinnedBy())

	var nilMsg *Message
	assert.False(t, nilMsg.IsPinned())
}

func TestMessageClone(t *testing.T) {
	m := &Message{
		ID:      "1",
		Whisper: []string{"bob"},
		Rolls:   []Roll{{Formula: "1d20", Total: 15, Detail: []string{"15"}}},
		Flags:   map[string]string{FlagPinned: "gm"},
	}
	c := m.Clone()
	c.Whisper[0] = "carol"
	c.Rolls[0].Detail[0] = "1"
	c.Flags[FlagPinned] = "alice"

	assert.Equal(t, "bob", m.Whisper[0])
	assert.Equal(t, "15", m.Rolls[0].Detail[0])
	assert.Equal(t, "gm", m.PinnedBy())
	assert.Nil(t, (*Message)(nil).Clone())
}

func TestRole(t *testing.T) {
	assert.True(t, gm.IsGM())
	assert.True(t, helper.IsGM())
	assert.False(t, bob.IsGM())

	assert.True(t, gm.HasRole(RoleGameMaster))
	assert.True(t, bob.HasRole(RolePlayer))
	assert.False(t, bob.HasRole(RoleAssistant))
	assert.False(t, gm.HasRole(RoleNone), "RoleNone 表示禁止所有人")

	assert.True(t, RoleNone.Valid())
	assert.False(t, Role(0).Valid())
	assert.Equal(t, "主持人", RoleGameMaster.String())
	assert.Equal(t, "Role(9)", Role(9).String())
}

func TestEntry(t *testing.T) {
	ts := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	m := &Message{
		ID:        "1",
		Author:    "alice",
		Timestamp: ts,
		Whisper:   []string{"gm"},
		Flags:     map[string]string{FlagPinned: "gm"},
	}

	e := NewEntry(m, bob)
	assert.Equal(t, "1", e.ItemID())
	assert.Equal(t, ts, e.ItemTime())
	assert.Equal(t, "alice", e.AuthorID())
	assert.False(t, e.IsVisible())

	require.True(t, NewEntry(m, gm).IsVisible())
	assert.True(t, IsPinnedEntry(e))
	assert.False(t, IsPinnedEntry(m))
}
