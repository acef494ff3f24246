package config

import (
	"sync"
	"sync/atomic"
)

// AtomicContainer 運行時配置容器
// 讀取無鎖，返回的配置只讀；修改必須通過 Update。
type AtomicContainer struct {
	store atomic.Pointer[Config]
	mu    sync.Mutex
}

// NewAtomicContainer 初始化，存儲一份深拷貝
func NewAtomicContainer(cfg *Config) *AtomicContainer {
	c := &AtomicContainer{}
	c.store.Store(cfg.DeepCopy())
	return c
}

// Get 獲取當前配置快照
func (c *AtomicContainer) Get() *Config {
	return c.store.Load()
}

// Update 寫時複製更新：複製、修改、驗證、替換
func (c *AtomicContainer) Update(fn func(*Config) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	newCfg := c.store.Load().DeepCopy()
	if err := fn(newCfg); err != nil {
		return err
	}
	if err := newCfg.Validate(); err != nil {
		return err
	}

	c.store.Store(newCfg)
	return nil
}
