// Package safe_close coordinates graceful shutdown of long running goroutines
// Package safe_close 协调长期运行协程的优雅退出
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached goroutine and waits for them
// SafeClose 向所有附加的协程广播关闭信号并等待其退出
type SafeClose struct {
	closeSignal chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in a new goroutine
// fn must call done when it exits and should return once closeSignal is closed
// Attach 在新协程中运行 fn，fn 退出时必须调用 done，并应在 closeSignal 关闭后返回
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	go fn(func() { once.Do(s.wg.Done) }, s.closeSignal)
}

// SendCloseSignal closes the signal channel; the first non-nil err is kept
// SendCloseSignal 发送关闭信号，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	if err != nil {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
	s.closeOnce.Do(func() { close(s.closeSignal) })
}

// CloseSignal returns the channel closed by SendCloseSignal
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed blocks until every attached goroutine called done
// WaitClosed 阻塞直到所有附加协程调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
