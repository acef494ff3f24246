package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	"github.com/Yat-Muk/chatpins/internal/pinlog"
	"github.com/Yat-Muk/chatpins/internal/tui/state"
)

// PinActions 界面可觸發的置頂操作
type PinActions interface {
	Unpin(ctx context.Context, actor *chat.User, id string) (*chat.Message, error)
	FlushExceptPins(ctx context.Context, actor *chat.User) (int, error)
}

// Config 用於初始化 Handlers 的配置結構體
type Config struct {
	Log      *zap.Logger
	StateMgr *state.Manager
	Engine   *pinlog.Engine
	Model    *pinlog.Model
	Pins     PinActions
}
