package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yat-Muk/chatpins/internal/pkg/appctx"
	"github.com/Yat-Muk/chatpins/internal/pkg/logger"
	"github.com/Yat-Muk/chatpins/internal/pkg/version"
	"github.com/Yat-Muk/chatpins/internal/tui/model"
)

func main() {
	// 1. 命令行參數解析
	var (
		workDir   = flag.String("dir", "", "指定工作目錄 (默認: /etc/chatpins 或 ~/.chatpins)")
		userID    = flag.String("user", "", "以指定用戶的視角查看 (覆蓋配置文件)")
		demoMode  = flag.Bool("demo", false, "生成模擬聊天流量")
		showVer   = flag.Bool("version", false, "顯示版本信息")
		debugFlag = flag.Bool("debug", false, "開啟調試模式")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// 2. 環境初始化
	paths, err := appctx.NewPaths(*workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "致命錯誤: 無法初始化路徑: %v\n", err)
		os.Exit(1)
	}

	redirectStdErr(filepath.Join(paths.LogDir, "stderr.log"))

	log, err := logger.New(loggerConfig(paths, *debugFlag))
	if err != nil {
		panic(fmt.Sprintf("日誌初始化失敗: %v", err))
	}
	defer log.Sync()

	log.Info("Chatpins 正在啟動",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit),
		zap.Bool("demo", *demoMode),
	)

	// 3. 依賴注入
	deps, err := initializeDependencies(log, paths, Options{
		UserID: *userID,
		Demo:   *demoMode,
	})
	if err != nil {
		log.Fatal("依賴初始化失敗", zap.Error(err))
	}
	defer deps.Close()

	runTUI(deps)
}

func runTUI(deps *AppDependencies) {
	router := model.NewRouter(deps.HandlerConfig)

	p := tea.NewProgram(
		router,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// 崩潰保護
	defer func() {
		if r := recover(); r != nil {
			p.ReleaseTerminal()
			fmt.Printf("\n\n❌ 程序崩潰: %v\n", r)
			deps.Log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	// 先訂閱再首次渲染，保證期間的事件不丟失
	deps.Dispatcher.Subscribe()
	g.Go(func() error {
		return deps.Dispatcher.Run(gctx)
	})
	if deps.Demo != nil {
		g.Go(func() error {
			return deps.Demo.Run(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	// 後台任務失敗時退出界面
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("程序運行錯誤: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("👋 Bye!")
}

func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		os.Stderr = f
	}
}
