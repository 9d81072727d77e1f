package service

import (
	"fmt"
	"sync"

	"office-web-server/internal/domain"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, level+": "+msg)
}

func (m *MockLogger) Info(msg string, fields ...interface{})  { m.record("INFO", msg) }
func (m *MockLogger) Debug(msg string, fields ...interface{}) { m.record("DEBUG", msg) }
func (m *MockLogger) Warn(msg string, fields ...interface{})  { m.record("WARN", msg) }
func (m *MockLogger) Error(msg string, err error, fields ...interface{}) {
	m.record("ERROR", fmt.Sprintf("%s - %v", msg, err))
}

func (m *MockLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

var _ domain.Logger = (*MockLogger)(nil)
