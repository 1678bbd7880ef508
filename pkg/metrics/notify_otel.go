package metrics

import (
	"context"
)

// 包级包装函数，未初始化时静默跳过，方便在任意层直接调用

// RecordDispatched 记录一次通道投放
func RecordDispatched(kind, channel, status string) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordDispatched(ctx, kind, channel, status)
	}
}

// RecordSent 记录一次 worker 投递结果
func RecordSent(kind, channel, status string, duration float64) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordSent(ctx, kind, channel, status, duration)
	}
}

// RecordJobRun 记录一次调度任务执行
func RecordJobRun(job, status string, duration float64) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordJobRun(ctx, job, status, duration)
	}
}

// RecordJobSkipped 记录一次被跳过的任务触发
func RecordJobSkipped(job string) {
	ctx := context.Background()
	m := GetMetrics()
	if m != nil {
		m.RecordJobSkipped(ctx, job)
	}
}

// RecordCheckInCreated 记录打卡创建
func RecordCheckInCreated(count int64) {
	m := GetMetrics()
	if m != nil {
		m.CheckInsCreatedTotal.Add(context.Background(), count)
	}
}

// RecordCheckInCompleted 记录打卡完成
func RecordCheckInCompleted() {
	m := GetMetrics()
	if m != nil {
		m.CheckInsCompletedTotal.Add(context.Background(), 1)
	}
}

// RecordCheckInMissed 记录打卡错过
func RecordCheckInMissed(count int64) {
	m := GetMetrics()
	if m != nil {
		m.CheckInsMissedTotal.Add(context.Background(), count)
	}
}
