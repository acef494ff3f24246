package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Yat-Muk/chatpins/internal/domain/config"
)

// ConfigService 啟動時準備運行配置
type ConfigService struct {
	repo     config.Repository
	migrator *config.Migrator
	logger   *zap.Logger
}

// NewConfigService 創建配置服務
func NewConfigService(repo config.Repository, logger *zap.Logger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigService{
		repo:     repo,
		migrator: config.NewMigrator(),
		logger:   logger.Named("config"),
	}
}

// Bootstrap 加載配置並放入運行時容器
// 舊版本遷移後填充默認值並寫回；文件無法解析或校驗失敗時使用默認配置，且不覆蓋原文件。
func (s *ConfigService) Bootstrap(ctx context.Context) *config.AtomicContainer {
	cfg, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("配置不可用，使用默認配置", zap.Error(err))
		return config.NewAtomicContainer(config.DefaultConfig())
	}

	if err := s.repo.Save(ctx, cfg); err != nil {
		s.logger.Warn("寫回配置失敗", zap.Error(err))
	}
	s.logger.Info("配置已就緒",
		zap.Int("version", cfg.Version),
		zap.Int("batch_size", cfg.Chat.BatchSize),
		zap.String("viewer", cfg.Viewer.UserID),
	)
	return config.NewAtomicContainer(cfg)
}

func (s *ConfigService) load(ctx context.Context) (*config.Config, error) {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("加載配置失敗: %w", err)
	}

	if s.migrator.NeedsMigration(cfg) {
		from := cfg.Version
		s.logger.Info("遷移配置",
			zap.Int("from_version", from),
			zap.String("migration_path", s.migrator.GetMigrationPath(from)),
		)
		if cfg, err = s.migrator.MigrateToLatest(cfg, nil); err != nil {
			return nil, fmt.Errorf("遷移失敗: %w", err)
		}
	}

	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校驗失敗: %w", err)
	}
	return cfg, nil
}
