package email

import (
	"context"
	"fmt"
	"sync"
)

// MockSender implements Sender for testing.
type MockSender struct {
	mu sync.Mutex

	// SendFunc allows tests to customize behavior
	SendFunc func(ctx context.Context, email *Email) (string, error)

	// Sent records every email delivered through the default path
	Sent []*Email

	// CallLog tracks method calls
	CallLog []string
}

// NewMockSender creates a mock email sender.
func NewMockSender() *MockSender {
	return &MockSender{
		Sent:    []*Email{},
		CallLog: []string{},
	}
}

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("Send(%v)", email.To))
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return fmt.Sprintf("msg_%d", len(m.Sent)), nil
}

// LastSent returns the most recently sent email, or nil.
func (m *MockSender) LastSent() *Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}
