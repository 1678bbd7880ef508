package mailer

import (
	"context"
	"fmt"
	"sync"

	"GoalPulse/config"
	"GoalPulse/pkg/logger"

	"go.uber.org/zap"
)

// Client 邮件客户端接口
type Client interface {
	// Send 发送单封邮件
	// to: 收件地址（明文，调用方负责解密）
	// subject: 邮件标题
	// body: 邮件正文（纯文本）
	Send(ctx context.Context, to, subject, body string) error
}

var (
	mailClient Client
	mailOnce   sync.Once
	mailErr    error
)

// Init 初始化邮件客户端
func Init() error {
	mailOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.MailProvider {
		case "smtp":
			mailClient = NewSMTPClient()
		case "mock":
			mailClient = NewMockClient()
		default:
			mailErr = fmt.Errorf("unsupported mail provider: %s", cfg.MailProvider)
		}

		if mailErr != nil {
			logger.Logger.Error("Failed to initialize mail client", zap.Error(mailErr))
			return
		}

		logger.Logger.Info("Mail client initialized successfully",
			zap.String("provider", cfg.MailProvider),
		)
	})

	return mailErr
}

func GetClient() Client {
	if mailClient == nil {
		panic("mail client not initialized, call mailer.Init() first")
	}
	return mailClient
}

// SetClient 测试用，注入 mock
func SetClient(c Client) {
	mailClient = c
}

func Send(ctx context.Context, to, subject, body string) error {
	return GetClient().Send(ctx, to, subject, body)
}
