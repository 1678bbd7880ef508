package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"GoalPulse/config"
	"GoalPulse/internal/queue"
	"GoalPulse/internal/service"
	"GoalPulse/pkg/logger"
	"GoalPulse/pkg/mailer"
	"GoalPulse/pkg/metrics"
	pkgotel "GoalPulse/pkg/otel"
	"GoalPulse/pkg/push"
	"GoalPulse/pkg/snowflake"
	"GoalPulse/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
		ServiceName:    config.Cfg.ServiceName + "-worker",
		ServiceVersion: config.Cfg.ServiceVersion,
		Environment:    config.Cfg.Environment,
		OTLPEndpoint:   config.Cfg.OTLPEndpoint,
		SampleRatio:    config.Cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry, telemetry disabled", zap.Error(err))
	} else {
		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize business metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 邮件和推送提供商，初始化失败降级运行
	if err := mailer.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize mail provider", zap.Error(err))
		logger.Logger.Info("Email notifications will not be delivered")
	}
	if err := push.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize push provider", zap.Error(err))
		logger.Logger.Info("Push notifications will not be delivered")
	}

	// 消费前确保拓扑已就位，worker 可能先于 scheduler 启动
	if err := queue.Setup(); err != nil {
		logger.Logger.Fatal("Failed to set up notification queues", zap.Error(err))
	}

	// 设置通知服务，所有消费者都走这一环节
	queue.SetNotificationSender(service.Notification())

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
