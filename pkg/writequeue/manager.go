// Package writequeue serializes read-modify-write operations that share a key
// Package writequeue 串行化同一键上的读改写操作
//
// Keys are arbitrary strings: the local store uses its blob key, the remote
// store uses "user_<uid>". Each key gets a lazily started worker that runs
// operations in FIFO order and is reclaimed after it has been idle.
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作等待超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	QueueCapacity int           // 每个键的队列容量，默认 100
	WriteTimeout  time.Duration // 单次写操作等待上限，默认 30 秒
	IdleTimeout   time.Duration // 空闲队列回收时间，默认 10 分钟
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// keyQueue the FIFO queue and worker of one key
// keyQueue 单个键的 FIFO 队列与 worker
type keyQueue struct {
	key      string
	ch       chan writeOp
	lastUsed atomic.Int64
	closed   atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (q *keyQueue) stop() {
	q.stopOnce.Do(func() {
		q.closed.Store(true)
		close(q.stopCh)
	})
}

func (q *keyQueue) touch() {
	q.lastUsed.Store(time.Now().UnixNano())
}

// Manager 管理所有键的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool

	ctx     context.Context
	cancel  context.CancelFunc
	janitor sync.WaitGroup
}

// New creates a manager; nil cfg or logger fall back to defaults
// New 创建写队列管理器，cfg 或 logger 为 nil 时使用默认值
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config: c,
		logger: logger,
		queues: make(map[string]*keyQueue),
		ctx:    ctx,
		cancel: cancel,
	}

	m.janitor.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute runs fn on the worker of key and waits for its result
// Operations on the same key never overlap and run in submission order
// Execute 在 key 对应的 worker 上执行 fn 并等待结果
// 同一键上的操作不会重叠，按提交顺序执行
func (m *Manager) Execute(ctx context.Context, key string, fn func() error) error {
	queue, err := m.queueFor(key)
	if err != nil {
		return err
	}

	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case queue.ch <- op:
	default:
		return ErrWriteQueueFull
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-queue.done:
		// the worker drains before exiting, so a result may still be waiting
		select {
		case err := <-op.result:
			return err
		default:
			return ErrWriteQueueClosed
		}
	}
}

// queueFor returns the live queue of key, starting one when needed
func (m *Manager) queueFor(key string) (*keyQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrWriteQueueClosed
	}
	if q, ok := m.queues[key]; ok && !q.closed.Load() {
		q.touch()
		return q, nil
	}

	q := &keyQueue{
		key:    key,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	q.touch()
	m.queues[key] = q
	go m.worker(q)

	m.logger.Debug("created write queue", zap.String("key", key))
	return q, nil
}

func (m *Manager) worker(q *keyQueue) {
	defer close(q.done)
	for {
		select {
		case <-q.stopCh:
			m.drain(q)
			return
		case op := <-q.ch:
			m.run(q, op)
		}
	}
}

func (m *Manager) run(q *keyQueue, op writeOp) {
	q.touch()
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}
	op.result <- op.fn()
}

func (m *Manager) drain(q *keyQueue) {
	for {
		select {
		case op := <-q.ch:
			m.run(q, op)
		default:
			return
		}
	}
}

func (m *Manager) cleanupIdleQueues() {
	defer m.janitor.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.reclaimIdle(time.Now())
		}
	}
}

// reclaimIdle stops queues that are empty and unused for IdleTimeout
func (m *Manager) reclaimIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	reclaimed := 0
	for key, q := range m.queues {
		idle := time.Duration(now.UnixNano() - q.lastUsed.Load())
		if idle < m.config.IdleTimeout || len(q.ch) > 0 {
			continue
		}
		q.stop()
		delete(m.queues, key)
		reclaimed++
		m.logger.Debug("reclaimed idle write queue", zap.String("key", key), zap.Duration("idleTime", idle))
	}
	return reclaimed
}

// Shutdown stops accepting work, lets every worker drain and waits for them
// Shutdown 停止接收新操作，等待所有 worker 处理完剩余操作
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*keyQueue, 0, len(m.queues))
	for _, q := range m.queues {
		q.stop()
		queues = append(queues, q)
	}
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down", zap.Int("queues", len(queues)))
	m.cancel()

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			<-q.done
		}
		m.janitor.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}

// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Metrics 写队列管理器指标
type Metrics struct {
	QueueCapacity int  `json:"queueCapacity"`
	ActiveQueues  int  `json:"activeQueues"`
	IsClosed      bool `json:"isClosed"`
}

// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  len(m.queues),
		IsClosed:      m.closed,
	}
}
