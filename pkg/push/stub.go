package push

import (
	"context"

	"GoalPulse/pkg/logger"

	"go.uber.org/zap"
)

// StubClient 只记日志不真正推送，等接了真实厂商通道后替换
// TODO: 接入 APNs / FCM
type StubClient struct{}

func NewStubClient() *StubClient {
	return &StubClient{}
}

func (c *StubClient) Send(ctx context.Context, deviceToken, title, body string) error {
	logger.Logger.Info("Push notification (stub)",
		zap.String("title", title),
	)
	return nil
}
