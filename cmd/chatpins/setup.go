package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/application"
	"github.com/Yat-Muk/chatpins/internal/domain/chat"
	domainConfig "github.com/Yat-Muk/chatpins/internal/domain/config"
	"github.com/Yat-Muk/chatpins/internal/infra/archive"
	"github.com/Yat-Muk/chatpins/internal/infra/chatstore"
	infraConfig "github.com/Yat-Muk/chatpins/internal/infra/config"
	"github.com/Yat-Muk/chatpins/internal/pinlog"
	"github.com/Yat-Muk/chatpins/internal/pkg/appctx"
	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
	"github.com/Yat-Muk/chatpins/internal/pkg/logger"
	"github.com/Yat-Muk/chatpins/internal/pkg/version"
	"github.com/Yat-Muk/chatpins/internal/tui/handlers"
	"github.com/Yat-Muk/chatpins/internal/tui/msg"
	"github.com/Yat-Muk/chatpins/internal/tui/render"
	"github.com/Yat-Muk/chatpins/internal/tui/state"
)

// 首個 WindowSizeMsg 到達前的初始尺寸
const (
	initialWidth  = 80
	initialHeight = 19

	archiveMaxFiles = 5
)

// Options 命令行選項
type Options struct {
	UserID string
	Demo   bool
}

type AppDependencies struct {
	Log        *zap.Logger
	Paths      *appctx.Paths
	Config     *domainConfig.AtomicContainer
	Store      *chatstore.Store
	Engine     *pinlog.Engine
	Dispatcher *application.HookDispatcher
	Demo       *chatstore.Demo

	HandlerConfig *handlers.Config
}

// Close 釋放引擎與存儲
func (d *AppDependencies) Close() {
	d.Engine.Close()
	d.Store.Close()
}

// loggerConfig 按配置文件的 log 段構建日誌配置
// 此時日誌尚未初始化，配置讀取失敗時使用默認值。
func loggerConfig(paths *appctx.Paths, debug bool) logger.Config {
	cfg := logger.DefaultConfig()
	cfg.OutputPath = paths.LogFile

	if fileCfg, err := infraConfig.NewFileRepository(paths.ConfigFile, zap.NewNop()).Load(context.Background()); err == nil {
		lc := fileCfg.Log
		if lc.Level != "" {
			cfg.Level = lc.Level
		}
		if lc.OutputPath != "" {
			cfg.OutputPath = paths.Resolve(lc.OutputPath)
		}
		if lc.MaxSize > 0 {
			cfg.MaxSize = lc.MaxSize
		}
		if lc.MaxBackups > 0 {
			cfg.MaxBackups = lc.MaxBackups
		}
		if lc.MaxAge > 0 {
			cfg.MaxAge = lc.MaxAge
		}
		cfg.Compress = lc.Compress
	}

	cfg.Console = false
	if debug {
		cfg.Level = "debug"
	}
	return cfg
}

func initializeDependencies(log *zap.Logger, paths *appctx.Paths, opts Options) (*AppDependencies, error) {
	ctx := context.Background()

	// ==========================================
	// 1. 配置
	// ==========================================
	configRepo := infraConfig.NewFileRepository(paths.ConfigFile, log)
	cfgContainer := application.NewConfigService(configRepo, log).Bootstrap(ctx)
	initialConfig := cfgContainer.Get()

	// ==========================================
	// 2. 消息存儲
	// ==========================================
	store := chatstore.New(log)
	seedFile := paths.SeedFile
	if initialConfig.Store.SeedFile != "" {
		seedFile = paths.Resolve(initialConfig.Store.SeedFile)
	}
	if err := store.LoadSeedFile(ctx, seedFile); err != nil {
		return nil, fmt.Errorf("載入種子數據失敗: %w", err)
	}
	if len(store.Users()) == 0 {
		for _, u := range chatstore.DefaultUsers() {
			if err := store.AddUser(u); err != nil {
				return nil, err
			}
		}
	}

	viewerID := initialConfig.Viewer.UserID
	if opts.UserID != "" {
		viewerID = opts.UserID
	}
	viewer, err := store.User(ctx, viewerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfig, fmt.Sprintf("查看者 %q 不存在", viewerID))
	}

	// ==========================================
	// 3. 應用服務層
	// ==========================================
	pinSvc := application.NewPinService(store, cfgContainer, log)

	archiver, err := archive.NewManager(
		filepath.Join(paths.DataDir, "archive"),
		filepath.Join(paths.DataDir, "archive.key"),
		archive.RetentionPolicy{MaxFiles: archiveMaxFiles},
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("歸檔管理器初始化失敗: %w", err)
	}
	pinSvc.SetArchiver(archiver)

	// ==========================================
	// 4. 狀態管理與日誌引擎
	// ==========================================
	stateMgr := state.NewManager(&state.Config{
		Log:           log,
		InitialConfig: initialConfig,
		Viewer:        viewer,
		Version:       version.Short(),
	})

	coll := chatstore.NewViewerCollection(store, viewer)
	logModel := pinlog.NewModel(coll, func(it pinlog.Item) bool { return chat.IsPinnedEntry(it) })
	engine := pinlog.New(pinlog.Config{
		Model:     logModel,
		Renderer:  render.NewMessageRenderer(store, pinSvc, initialConfig.Chat.WrapWidth, log),
		ViewerID:  viewer.ID,
		BatchSize: initialConfig.Chat.BatchSize,
		Width:     initialWidth,
		Height:    initialHeight,
		Logger:    log,
		OnUnseen: func(id string) {
			stateMgr.Post(msg.UnseenMsg{ID: id})
		},
	})

	dispatcher := application.NewHookDispatcher(store, engine, coll.Entry, log)
	dispatcher.OnApplied = func(ev pinlog.Event, err error) {
		id := ev.ID
		if id == "" && ev.Item != nil {
			id = ev.Item.ItemID()
		}
		stateMgr.Post(msg.LogChangedMsg{Kind: ev.Kind.String(), ID: id, Err: err})
	}

	var demo *chatstore.Demo
	if opts.Demo {
		demo = chatstore.NewDemo(store, initialConfig.Store.DemoInterval, time.Now().UnixNano(), log)
	}

	// ==========================================
	// 5. TUI Handler 配置
	// ==========================================
	handlerCfg := &handlers.Config{
		Log:      log,
		StateMgr: stateMgr,
		Engine:   engine,
		Model:    logModel,
		Pins:     pinSvc,
	}

	log.Info("依賴初始化完成",
		zap.String("viewer", viewer.ID),
		zap.Int("messages", store.Len()),
		zap.String("seed", seedFile),
	)

	return &AppDependencies{
		Log:           log,
		Paths:         paths,
		Config:        cfgContainer,
		Store:         store,
		Engine:        engine,
		Dispatcher:    dispatcher,
		Demo:          demo,
		HandlerConfig: handlerCfg,
	}, nil
}
