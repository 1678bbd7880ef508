package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 通知相关指标
	NotificationDispatchedTotal metric.Int64Counter
	NotificationSentTotal       metric.Int64Counter
	NotificationSendDuration    metric.Float64Histogram
	NotificationRetryTotal      metric.Int64Counter

	// 调度任务相关指标
	JobRunsTotal   metric.Int64Counter
	JobDuration    metric.Float64Histogram
	JobSkippedTotal metric.Int64Counter

	// 打卡相关指标
	CheckInsCreatedTotal   metric.Int64Counter
	CheckInsCompletedTotal metric.Int64Counter
	CheckInsMissedTotal    metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("goalpulse")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.NotificationDispatchedTotal, err = meter.Int64Counter(
		"notification_dispatched_total",
		metric.WithDescription("Total number of notifications dispatched to channels"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	metrics.NotificationSentTotal, err = meter.Int64Counter(
		"notification_sent_total",
		metric.WithDescription("Total number of notifications delivered by the worker"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	metrics.NotificationSendDuration, err = meter.Float64Histogram(
		"notification_send_duration_seconds",
		metric.WithDescription("Time spent delivering notifications in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.NotificationRetryTotal, err = meter.Int64Counter(
		"notification_retry_total",
		metric.WithDescription("Total number of notification delivery retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	metrics.JobRunsTotal, err = meter.Int64Counter(
		"job_runs_total",
		metric.WithDescription("Total number of scheduled job runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	metrics.JobDuration, err = meter.Float64Histogram(
		"job_duration_seconds",
		metric.WithDescription("Time spent running scheduled jobs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.JobSkippedTotal, err = meter.Int64Counter(
		"job_skipped_total",
		metric.WithDescription("Total number of job runs skipped because the previous run was still going"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	metrics.CheckInsCreatedTotal, err = meter.Int64Counter(
		"check_ins_created_total",
		metric.WithDescription("Total number of check-ins created"),
		metric.WithUnit("{check_in}"),
	)
	if err != nil {
		return err
	}

	metrics.CheckInsCompletedTotal, err = meter.Int64Counter(
		"check_ins_completed_total",
		metric.WithDescription("Total number of check-ins completed"),
		metric.WithUnit("{check_in}"),
	)
	if err != nil {
		return err
	}

	metrics.CheckInsMissedTotal, err = meter.Int64Counter(
		"check_ins_missed_total",
		metric.WithDescription("Total number of check-ins marked as missed"),
		metric.WithUnit("{check_in}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordDispatched 记录一次通道投放
func (m *OTelMetrics) RecordDispatched(ctx context.Context, kind, channel, status string) {
	m.NotificationDispatchedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
}

// RecordSent 记录一次 worker 投递结果
func (m *OTelMetrics) RecordSent(ctx context.Context, kind, channel, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("channel", channel),
		attribute.String("status", status),
	}

	m.NotificationSentTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.NotificationSendDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("channel", channel),
	))
}

// RecordJobRun 记录一次调度任务执行
func (m *OTelMetrics) RecordJobRun(ctx context.Context, job, status string, duration float64) {
	m.JobRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("status", status),
	))
	m.JobDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("job", job),
	))
}

// RecordJobSkipped 记录一次被跳过的任务触发
func (m *OTelMetrics) RecordJobSkipped(ctx context.Context, job string) {
	m.JobSkippedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job),
	))
}
