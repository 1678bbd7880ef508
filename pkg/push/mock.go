package push

import (
	"context"
	"errors"
	"sync"
)

type MockCall struct {
	DeviceToken string
	Title       string
	Body        string
}

// MockClient 可配置的推送客户端 mock，实现 Client 接口
type MockClient struct {
	mu    sync.Mutex
	Calls []MockCall

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]MockCall, 0),
	}
}

func (m *MockClient) Send(ctx context.Context, deviceToken, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{
		DeviceToken: deviceToken,
		Title:       title,
		Body:        body,
	})

	if m.FailNext {
		m.FailNext = false
		return errors.New("mock push send failure")
	}
	return nil
}

// CallCount 返回累计调用次数
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
