package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"GoalPulse/config"
	"GoalPulse/pkg/logger"

	"go.uber.org/zap"
)

// SMTPClient 基于 net/smtp 的邮件客户端实现
type SMTPClient struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPClient() *SMTPClient {
	cfg := config.Cfg
	return &SMTPClient{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (c *SMTPClient) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(c.host, c.port)

	msg := strings.Join([]string{
		"From: " + c.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}

	if err := smtp.SendMail(addr, auth, c.from, []string{to}, []byte(msg)); err != nil {
		logger.Logger.Error("Failed to send email",
			zap.String("smtp_addr", addr),
			zap.Error(err),
		)
		return fmt.Errorf("smtp send failed: %w", err)
	}

	logger.Logger.Debug("Email sent",
		zap.String("subject", subject),
	)
	return nil
}
