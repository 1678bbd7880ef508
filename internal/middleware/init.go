package middleware

import (
	"go.uber.org/zap"

	"GoalPulse/pkg/logger"
)

// Init 初始化所有中间件，auth 依赖 token 包先完成初始化
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
