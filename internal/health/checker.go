package health

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/robfig/cron/v3"
)

// Status 模型服务可用状态的只读视图
type Status interface {
	Available() bool
}

// availabilityChecker 探测模型服务是否可达（便于测试注入 mock）
type availabilityChecker interface {
	CheckAvailability(ctx context.Context) bool
}

// Checker 周期性刷新模型可用状态
// 状态对所有请求只读共享，每个探测周期刷新一次，不会跨请求缓存过期值
type Checker struct {
	cron      *cron.Cron
	client    availabilityChecker
	spec      string
	available atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
}

func NewChecker(client availabilityChecker, spec string) *Checker {
	return &Checker{
		cron:   cron.New(),
		client: client,
		spec:   spec,
	}
}

// Start 启动周期探测，并立即执行一次初始探测
func (c *Checker) Start() error {
	c.mu.Lock()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.mu.Unlock()

	_, err := c.cron.AddFunc(c.spec, c.refresh)
	if err != nil {
		return fmt.Errorf("注册健康检查任务失败: %w", err)
	}

	c.cron.Start()
	logger.Infof("[Health] 健康检查已启动，探测周期: %s", c.spec)

	go c.refresh()
	return nil
}

// Stop 停止周期探测并等待进行中的探测结束
func (c *Checker) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	ctx := c.cron.Stop()
	<-ctx.Done()
	logger.Infof("[Health] 健康检查已停止")
}

// Available 模型服务当前是否可用
func (c *Checker) Available() bool {
	return c.available.Load()
}

func (c *Checker) refresh() {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	ok := c.client.CheckAvailability(ctx)
	prev := c.available.Swap(ok)
	if prev != ok {
		logger.Infof("[Health] 模型可用状态变化: %v -> %v", prev, ok)
	}
}
