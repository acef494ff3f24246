package semaphore

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Yat-Muk/chatpins/internal/pkg/errors"
)

// Task 隊列中執行的任務
type Task func(ctx context.Context) error

type pending struct {
	ctx    context.Context
	task   Task
	result chan error
}

// Semaphore 帶 FIFO 等待隊列的並發閘門
// max = 1 時即為互斥隊列：任務按入隊順序逐個執行，互不交錯
type Semaphore struct {
	mu        sync.Mutex
	max       int
	remaining int
	queue     []*pending
}

// New 創建閘門，max < 1 時按 1 處理
func New(max int) *Semaphore {
	if max < 1 {
		max = 1
	}
	return &Semaphore{
		max:       max,
		remaining: max,
	}
}

// Remaining 剩餘可用槽位
func (s *Semaphore) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Active 正在執行的任務數
func (s *Semaphore) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max - s.remaining
}

// Pending 等待中的任務數
func (s *Semaphore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Add 將任務加入隊列，立即返回
// 返回的 channel 在任務結束後收到其結果（恰好一次）。
// 任務一旦入隊就會執行完畢：ctx 只傳遞值，不傳遞取消。
func (s *Semaphore) Add(ctx context.Context, task Task) <-chan error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := &pending{
		ctx:    context.WithoutCancel(ctx),
		task:   task,
		result: make(chan error, 1),
	}

	s.mu.Lock()
	s.queue = append(s.queue, p)
	s.mu.Unlock()

	s.try()
	return p.result
}

// Do 入隊並等待結果
// 調用方放棄等待 (ctx 結束) 時返回 ctx.Err()，任務本身仍會繼續執行。
func (s *Semaphore) Do(ctx context.Context, task Task) error {
	if ctx == nil {
		ctx = context.Background()
	}
	done := s.Add(ctx, task)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// try 在有空閒槽位時取出隊首任務執行
func (s *Semaphore) try() {
	s.mu.Lock()
	if s.remaining == 0 || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	next := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.remaining--
	s.mu.Unlock()

	go s.run(next)
}

func (s *Semaphore) run(p *pending) {
	err := call(p.ctx, p.task)

	s.mu.Lock()
	s.remaining++
	s.mu.Unlock()

	p.result <- err
	s.try()
}

// call 執行任務，panic 轉為錯誤，避免拖垮整個隊列
func call(ctx context.Context, task Task) (err error) {
	if task == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Wrap(fmt.Errorf("%v", r), apperrors.CodeTaskPanic, "隊列任務異常終止")
		}
	}()
	return task(ctx)
}
