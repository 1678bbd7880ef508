package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"GoalPulse/internal/schedule"
	"GoalPulse/pkg/errors"
	"GoalPulse/pkg/response"
)

var jobOrchestrator *schedule.Orchestrator

// SetJobOrchestrator 注入调度器实例，server 启动时调用。
// 未注入时 admin 任务接口返回 404。
func SetJobOrchestrator(o *schedule.Orchestrator) {
	jobOrchestrator = o
}

// ListJobs 列出所有调度任务及其状态
// GET /v1/admin/jobs
func ListJobs(ctx context.Context, c *app.RequestContext) {
	if jobOrchestrator == nil {
		response.Error(ctx, c, errors.JobNotFound)
		return
	}

	response.Success(ctx, c, jobOrchestrator.Status())
}

// TriggerJob 手动触发一次任务执行
// POST /v1/admin/jobs/:name/trigger
func TriggerJob(ctx context.Context, c *app.RequestContext) {
	if jobOrchestrator == nil {
		response.Error(ctx, c, errors.JobNotFound)
		return
	}

	name := c.Param("name")
	if err := jobOrchestrator.TriggerNow(ctx, name); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
