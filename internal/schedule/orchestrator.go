package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"GoalPulse/internal/model/dto"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/pkg/logger"
	"GoalPulse/pkg/metrics"
)

// JobFunc 一次任务执行体
type JobFunc func(ctx context.Context) error

type job struct {
	schedule Schedule
	run      JobFunc
	cancel   context.CancelFunc
	done     chan struct{}
	lastRun  *time.Time
	nextRun  *time.Time
	name     string
	running  bool
	started  bool
}

// Orchestrator 命名任务注册表。任务显式注册、按名启停，
// 同名任务重复注册会先停掉旧的
type Orchestrator struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		jobs: make(map[string]*job),
	}
}

// Register 注册或替换一个命名任务，注册不会自动启动
func (o *Orchestrator) Register(name string, schedule Schedule, fn JobFunc) {
	o.mu.Lock()
	old, exists := o.jobs[name]
	o.jobs[name] = &job{
		name:     name,
		schedule: schedule,
		run:      fn,
	}
	o.mu.Unlock()

	if exists && old.started {
		stopJob(old)
		logger.Logger.Info("Replaced running job",
			zap.String("job", name),
		)
	}
}

// Start 启动指定任务的调度循环
func (o *Orchestrator) Start(ctx context.Context, name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[name]
	if !ok {
		return pkgerrors.JobNotFound
	}
	if j.started {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	j.started = true

	go o.loop(loopCtx, j)

	logger.Logger.Info("Job started",
		zap.String("job", name),
	)
	return nil
}

// StartAll 启动全部已注册任务
func (o *Orchestrator) StartAll(ctx context.Context) {
	o.mu.Lock()
	names := make([]string, 0, len(o.jobs))
	for name := range o.jobs {
		names = append(names, name)
	}
	o.mu.Unlock()

	for _, name := range names {
		if err := o.Start(ctx, name); err != nil {
			logger.Logger.Error("Failed to start job",
				zap.String("job", name),
				zap.Error(err),
			)
		}
	}
}

// Stop 停止指定任务，等待当前这次执行结束
func (o *Orchestrator) Stop(name string) error {
	o.mu.Lock()
	j, ok := o.jobs[name]
	o.mu.Unlock()

	if !ok {
		return pkgerrors.JobNotFound
	}
	if !j.started {
		return nil
	}

	stopJob(j)

	o.mu.Lock()
	j.started = false
	j.nextRun = nil
	o.mu.Unlock()

	logger.Logger.Info("Job stopped",
		zap.String("job", name),
	)
	return nil
}

// StopAll 停止全部任务
func (o *Orchestrator) StopAll() {
	o.mu.Lock()
	names := make([]string, 0, len(o.jobs))
	for name := range o.jobs {
		names = append(names, name)
	}
	o.mu.Unlock()

	for _, name := range names {
		_ = o.Stop(name)
	}
}

// TriggerNow 同步执行一次任务，不影响原调度节奏
func (o *Orchestrator) TriggerNow(ctx context.Context, name string) error {
	o.mu.Lock()
	j, ok := o.jobs[name]
	o.mu.Unlock()

	if !ok {
		return pkgerrors.JobNotFound
	}

	return o.execute(ctx, j, "manual")
}

// Status 返回所有任务的调度状态，按名字排序
func (o *Orchestrator) Status() []dto.JobStatusItem {
	o.mu.Lock()
	defer o.mu.Unlock()

	items := make([]dto.JobStatusItem, 0, len(o.jobs))
	for _, j := range o.jobs {
		items = append(items, dto.JobStatusItem{
			Name:      j.name,
			Scheduled: j.started,
			Running:   j.running,
			LastRun:   j.lastRun,
			NextRun:   j.nextRun,
		})
	}

	sort.Slice(items, func(a, b int) bool { return items[a].Name < items[b].Name })
	return items
}

func (o *Orchestrator) loop(ctx context.Context, j *job) {
	defer close(j.done)

	// Stop 取消的是定时等待，不是正在跑的这一轮：
	// 任务体用不随停止取消的 context，进行中的扫描可以完整收尾
	bodyCtx := context.WithoutCancel(ctx)

	for {
		now := time.Now()
		next := j.schedule.Next(now)

		o.mu.Lock()
		j.nextRun = &next
		o.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := o.execute(bodyCtx, j, "scheduled"); err != nil {
				logger.Logger.Error("Job run failed",
					zap.String("job", j.name),
					zap.Error(err),
				)
			}
		}
	}
}

// execute 单次执行，上一轮还没结束时跳过
func (o *Orchestrator) execute(ctx context.Context, j *job, trigger string) error {
	o.mu.Lock()
	if j.running {
		o.mu.Unlock()
		logger.Logger.Info("Job still running, skipping this trigger",
			zap.String("job", j.name),
			zap.String("trigger", trigger),
		)
		metrics.RecordJobSkipped(j.name)
		return nil
	}
	j.running = true
	o.mu.Unlock()

	start := time.Now()

	defer func() {
		o.mu.Lock()
		j.running = false
		j.lastRun = &start
		o.mu.Unlock()
	}()

	logger.Logger.Info("Job run starting",
		zap.String("job", j.name),
		zap.String("trigger", trigger),
	)

	err := j.run(ctx)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "failed"
	}
	metrics.RecordJobRun(j.name, status, duration.Seconds())

	logger.Logger.Info("Job run finished",
		zap.String("job", j.name),
		zap.String("status", status),
		zap.Duration("duration", duration),
	)

	if err != nil {
		return fmt.Errorf("job %s failed: %w", j.name, err)
	}
	return nil
}

func stopJob(j *job) {
	if j.cancel != nil {
		j.cancel()
	}
	if j.done != nil {
		<-j.done
	}
}
