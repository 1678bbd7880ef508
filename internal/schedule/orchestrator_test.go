package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "GoalPulse/pkg/errors"
)

func TestTriggerNowRunsSynchronously(t *testing.T) {
	o := NewOrchestrator()
	var runs int32
	o.Register("demo", IntervalSchedule{Every: time.Hour}, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	require.NoError(t, o.TriggerNow(context.Background(), "demo"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestTriggerNowUnknownJob(t *testing.T) {
	o := NewOrchestrator()
	err := o.TriggerNow(context.Background(), "ghost")
	assert.ErrorIs(t, err, pkgerrors.JobNotFound)
}

func TestStartRunsOnSchedule(t *testing.T) {
	o := NewOrchestrator()
	var runs int32
	o.Register("ticking", IntervalSchedule{Every: 20 * time.Millisecond}, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	require.NoError(t, o.Start(context.Background(), "ticking"))
	time.Sleep(110 * time.Millisecond)
	require.NoError(t, o.Stop("ticking"))

	got := atomic.LoadInt32(&runs)
	assert.GreaterOrEqual(t, got, int32(2))

	// 停止后不再触发
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, got, atomic.LoadInt32(&runs))
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	o := NewOrchestrator()
	block := make(chan struct{})
	var runs int32
	o.Register("slow", IntervalSchedule{Every: time.Hour}, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		<-block
		return nil
	})

	go func() {
		_ = o.TriggerNow(context.Background(), "slow")
	}()

	// 等第一次执行进入 running 状态
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) == 1
	}, time.Second, 5*time.Millisecond)

	// 第二次触发直接跳过，不阻塞也不报错
	require.NoError(t, o.TriggerNow(context.Background(), "slow"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))

	close(block)
}

func TestStopLetsInFlightRunFinish(t *testing.T) {
	o := NewOrchestrator()
	entered := make(chan struct{})
	block := make(chan struct{})
	var ctxErr error
	var finished int32

	o.Register("draining", IntervalSchedule{Every: 10 * time.Millisecond}, func(ctx context.Context) error {
		close(entered)
		<-block
		// 停止只取消定时等待，执行中的任务体要能继续用 context 收尾
		ctxErr = ctx.Err()
		atomic.AddInt32(&finished, 1)
		return nil
	})
	require.NoError(t, o.Start(context.Background(), "draining"))

	<-entered
	stopped := make(chan struct{})
	go func() {
		require.NoError(t, o.Stop("draining"))
		close(stopped)
	}()

	// Stop 在等当前这一轮结束
	select {
	case <-stopped:
		t.Fatal("stop returned before the in-flight run finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(block)
	<-stopped

	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
	assert.NoError(t, ctxErr)
}

func TestReRegisterReplacesJob(t *testing.T) {
	o := NewOrchestrator()
	var first, second int32

	o.Register("swap", IntervalSchedule{Every: 10 * time.Millisecond}, func(ctx context.Context) error {
		atomic.AddInt32(&first, 1)
		return nil
	})
	require.NoError(t, o.Start(context.Background(), "swap"))
	time.Sleep(35 * time.Millisecond)

	// 重新注册会停掉旧循环
	o.Register("swap", IntervalSchedule{Every: 10 * time.Millisecond}, func(ctx context.Context) error {
		atomic.AddInt32(&second, 1)
		return nil
	})

	firstRuns := atomic.LoadInt32(&first)
	time.Sleep(35 * time.Millisecond)
	assert.Equal(t, firstRuns, atomic.LoadInt32(&first))
	// 新任务尚未启动，不会自己跑起来
	assert.Zero(t, atomic.LoadInt32(&second))

	require.NoError(t, o.Start(context.Background(), "swap"))
	time.Sleep(35 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&second), int32(0))
	o.StopAll()
}

func TestStatusReportsJobs(t *testing.T) {
	o := NewOrchestrator()
	o.Register("b-job", IntervalSchedule{Every: time.Hour}, func(ctx context.Context) error { return nil })
	o.Register("a-job", IntervalSchedule{Every: time.Hour}, func(ctx context.Context) error { return nil })

	require.NoError(t, o.Start(context.Background(), "a-job"))
	defer o.StopAll()

	items := o.Status()
	require.Len(t, items, 2)
	// 按名字排序
	assert.Equal(t, "a-job", items[0].Name)
	assert.Equal(t, "b-job", items[1].Name)

	assert.True(t, items[0].Scheduled)
	assert.False(t, items[1].Scheduled)

	require.Eventually(t, func() bool {
		for _, item := range o.Status() {
			if item.Name == "a-job" && item.NextRun != nil {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestTriggerNowPropagatesJobError(t *testing.T) {
	o := NewOrchestrator()
	o.Register("failing", IntervalSchedule{Every: time.Hour}, func(ctx context.Context) error {
		return assert.AnError
	})

	err := o.TriggerNow(context.Background(), "failing")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestScheduleNextCalculations(t *testing.T) {
	// 2024-03-01 是周五
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	next := WeeklySchedule{Weekday: time.Monday, At: "09:00:00"}.Next(now)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), next)

	// 当天同一星期几但时刻已过，推到下周
	next = WeeklySchedule{Weekday: time.Friday, At: "09:00:00"}.Next(now)
	assert.Equal(t, time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC), next)

	next = MonthlySchedule{Day: 1, At: "09:00:00"}.Next(now)
	assert.Equal(t, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), next)

	// 本月还没到的日期
	next = MonthlySchedule{Day: 15, At: "09:00:00"}.Next(now)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), next)

	// 31 号在短月取月末
	next = MonthlySchedule{Day: 31, At: "09:00:00"}.Next(time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC), next)

	next = DailySchedule{At: "03:00:00"}.Next(now)
	assert.Equal(t, time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC), next)
}
