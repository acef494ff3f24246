package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/domain/config"
	"github.com/Yat-Muk/chatpins/internal/infra/chatstore"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
)

var (
	gm    = &chat.User{ID: "gm", Name: "主持人", Role: chat.RoleGameMaster}
	alice = &chat.User{ID: "alice", Name: "Alice", Role: chat.RolePlayer}
	bob   = &chat.User{ID: "bob", Name: "Bob", Role: chat.RoleTrusted}
)

func newPinFixture(t *testing.T, permission int) (*PinService, *chatstore.Store, *config.AtomicContainer) {
	t.Helper()
	ctx := context.Background()

	store := chatstore.New(zap.NewNop())
	t.Cleanup(store.Close)
	for _, u := range []*chat.User{gm, alice, bob} {
		require.NoError(t, store.AddUser(u))
	}
	for _, m := range []*chat.Message{
		{ID: "m1", Author: "alice", Content: "第一條"},
		{ID: "m2", Author: "gm", Content: "公告", Flags: map[string]string{chat.FlagPinned: "gm"}},
		{ID: "m3", Author: "bob", Content: "第三條"},
	} {
		_, err := store.Create(ctx, m)
		require.NoError(t, err)
	}

	cfg := config.DefaultConfig()
	cfg.Chat.PinPermission = permission
	container := config.NewAtomicContainer(cfg)
	return NewPinService(store, container, zap.NewNop()), store, container
}

func TestPinService_Pin(t *testing.T) {
	ctx := context.Background()

	t.Run("主持人置頂", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		m, err := svc.Pin(ctx, gm, "m1")
		require.NoError(t, err)
		assert.Equal(t, "gm", m.PinnedBy())

		pinned, err := svc.IsPinned(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, pinned)
	})

	t.Run("權限不足", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		_, err := svc.Pin(ctx, alice, "m1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
		assert.Equal(t, apperrors.CodePermission, apperrors.CodeOf(err))
	})

	t.Run("已置頂", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		_, err := svc.Pin(ctx, gm, "m2")
		assert.True(t, errors.Is(err, apperrors.ErrAlreadyPinned))
	})

	t.Run("消息不存在", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		_, err := svc.Pin(ctx, gm, "missing")
		assert.True(t, errors.Is(err, apperrors.ErrMessageNotFound))
	})

	t.Run("權限設置熱更新", func(t *testing.T) {
		svc, _, container := newPinFixture(t, config.DefaultPinPermission)
		assert.False(t, svc.CanPin(bob))

		require.NoError(t, container.Update(func(c *config.Config) error {
			c.Chat.PinPermission = int(chat.RoleTrusted)
			return nil
		}))
		assert.True(t, svc.CanPin(bob))
		assert.False(t, svc.CanPin(alice))

		_, err := svc.Pin(ctx, bob, "m3")
		assert.NoError(t, err)
	})

	t.Run("禁止所有人", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, int(chat.RoleNone))
		assert.False(t, svc.CanPin(gm))
	})
}

func TestPinService_Unpin(t *testing.T) {
	ctx := context.Background()

	t.Run("主持人取消置頂", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		m, err := svc.Unpin(ctx, gm, "m2")
		require.NoError(t, err)
		assert.False(t, m.IsPinned())
	})

	t.Run("未置頂", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		_, err := svc.Unpin(ctx, gm, "m1")
		assert.True(t, errors.Is(err, apperrors.ErrNotPinned))
		assert.Equal(t, apperrors.CodePin, apperrors.CodeOf(err))
	})

	t.Run("置頂者可以取消自己的置頂", func(t *testing.T) {
		svc, store, container := newPinFixture(t, int(chat.RolePlayer))
		_, err := svc.Pin(ctx, alice, "m1")
		require.NoError(t, err)

		// 權限收緊後，置頂者仍可取消
		require.NoError(t, container.Update(func(c *config.Config) error {
			c.Chat.PinPermission = int(chat.RoleGameMaster)
			return nil
		}))
		m, _ := store.Get(ctx, "m1")
		assert.True(t, svc.CanUnpin(alice, m))
		assert.False(t, svc.CanUnpin(bob, m))

		_, err = svc.Unpin(ctx, bob, "m1")
		assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
		_, err = svc.Unpin(ctx, alice, "m1")
		assert.NoError(t, err)
	})

	t.Run("切換", func(t *testing.T) {
		svc, _, _ := newPinFixture(t, config.DefaultPinPermission)
		m, err := svc.Toggle(ctx, gm, "m2")
		require.NoError(t, err)
		assert.False(t, m.IsPinned())

		m, err = svc.Toggle(ctx, gm, "m2")
		require.NoError(t, err)
		assert.True(t, m.IsPinned())
	})
}

func TestPinService_Pinner(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newPinFixture(t, config.DefaultPinPermission)

	m, err := store.Get(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "主持人", svc.Pinner(ctx, m))

	ghost := &chat.Message{ID: "x", Flags: map[string]string{chat.FlagPinned: "ghost"}}
	assert.Equal(t, UnknownPinner, svc.Pinner(ctx, ghost))
	assert.Equal(t, UnknownPinner, svc.Pinner(ctx, &chat.Message{ID: "y"}))
}

func TestPinService_FlushExceptPins(t *testing.T) {
	ctx := context.Background()

	t.Run("保留置頂消息", func(t *testing.T) {
		svc, store, _ := newPinFixture(t, config.DefaultPinPermission)
		n, err := svc.FlushExceptPins(ctx, gm)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		msgs, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "m2", msgs[0].ID)

		n, err = svc.FlushExceptPins(ctx, gm)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("清空前歸檔", func(t *testing.T) {
		svc, store, _ := newPinFixture(t, config.DefaultPinPermission)
		arch := &fakeArchiver{}
		svc.SetArchiver(arch)

		n, err := svc.FlushExceptPins(ctx, gm)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, arch.batches, 1)
		assert.Len(t, arch.batches[0], 2)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("歸檔失敗時不刪除", func(t *testing.T) {
		svc, store, _ := newPinFixture(t, config.DefaultPinPermission)
		svc.SetArchiver(&fakeArchiver{err: errors.New("disk full")})

		_, err := svc.FlushExceptPins(ctx, gm)
		assert.Error(t, err)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("玩家無權清空", func(t *testing.T) {
		svc, store, _ := newPinFixture(t, config.DefaultPinPermission)
		_, err := svc.FlushExceptPins(ctx, alice)
		assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
		assert.Equal(t, 3, store.Len())
	})
}

type fakeArchiver struct {
	batches [][]*chat.Message
	err     error
}

func (f *fakeArchiver) Archive(msgs []*chat.Message, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.batches = append(f.batches, msgs)
	return "chat.bak", nil
}
