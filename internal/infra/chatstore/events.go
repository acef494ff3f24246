package chatstore

import (
	"sync"

	"github.com/Yat-Muk/chatpins/internal/domain/chat"
)

// EventKind 消息生命週期事件
type EventKind int

const (
	Created EventKind = iota
	Updated
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event 消息事件，Message 為變更後的副本 (刪除事件為刪除前的副本)
type Event struct {
	Kind    EventKind
	Message *chat.Message
}

// ID 事件對應的消息 id
func (e Event) ID() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.ID
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// DefaultEventBuffer 訂閱通道的默認緩衝
const DefaultEventBuffer = 256

// Subscribe 訂閱消息事件
// 事件按存儲的修改順序送達。返回的取消函數關閉通道，可重複調用。
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	sub := &subscriber{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}

	s.pubMu.Lock()
	s.subs[sub] = struct{}{}
	s.pubMu.Unlock()

	cancel := func() {
		// 先通知阻塞中的發布者放棄，再移除
		sub.stop()
		s.pubMu.Lock()
		s.removeLocked(sub)
		s.pubMu.Unlock()
	}
	return sub.ch, cancel
}

func (sub *subscriber) stop() {
	sub.once.Do(func() { close(sub.done) })
}

func (s *Store) removeLocked(sub *subscriber) {
	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	close(sub.ch)
}

// publish 調用方必須持有 pubMu
func (s *Store) publish(ev Event) {
	for sub := range s.subs {
		e := ev
		e.Message = ev.Message.Clone()
		select {
		case sub.ch <- e:
		case <-sub.done:
		}
	}
}

// closeSubscribers 關閉所有訂閱
func (s *Store) closeSubscribers() {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	for sub := range s.subs {
		sub.stop()
		s.removeLocked(sub)
	}
}
