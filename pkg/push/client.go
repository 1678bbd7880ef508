package push

import (
	"context"
	"fmt"
	"sync"

	"GoalPulse/config"
	"GoalPulse/pkg/logger"

	"go.uber.org/zap"
)

// Client 推送客户端接口
type Client interface {
	// Send 向设备 token 推送一条通知
	Send(ctx context.Context, deviceToken, title, body string) error
}

var (
	pushClient Client
	pushOnce   sync.Once
	pushErr    error
)

// Init 初始化推送客户端
func Init() error {
	pushOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.PushProvider {
		case "stub":
			pushClient = NewStubClient()
		case "mock":
			pushClient = NewMockClient()
		default:
			pushErr = fmt.Errorf("unsupported push provider: %s", cfg.PushProvider)
		}

		if pushErr != nil {
			logger.Logger.Error("Failed to initialize push client", zap.Error(pushErr))
			return
		}

		logger.Logger.Info("Push client initialized successfully",
			zap.String("provider", cfg.PushProvider),
		)
	})

	return pushErr
}

func GetClient() Client {
	if pushClient == nil {
		panic("push client not initialized, call push.Init() first")
	}
	return pushClient
}

// SetClient 测试用，注入 mock
func SetClient(c Client) {
	pushClient = c
}

func Send(ctx context.Context, deviceToken, title, body string) error {
	return GetClient().Send(ctx, deviceToken, title, body)
}
