package notification

import "sync"

// SentNotice records one delivery through the MockNotifier.
type SentNotice struct {
	Type     NoticeType
	To       string
	Data     map[string]string
	Template NoticeTemplate
}

// MockNotifier implements Notifier by recording sends. Used in tests.
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotice
}

// NewMockNotifier creates an empty mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements Notifier.
func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentNotice{
		Type:     noticeType,
		To:       notification.To,
		Data:     notification.Data,
		Template: template,
	})
	return nil
}

// Sent returns a copy of all recorded notices.
func (m *MockNotifier) Sent() []SentNotice {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentNotice, len(m.sent))
	copy(out, m.sent)
	return out
}
