package notification

import (
	"fmt"
)

// NotificationManager routes notices to a registered notifier by template.
type NotificationManager struct {
	// BaseUrl is the externally visible site root used to build links in
	// notices (verification, password reset).
	BaseUrl string

	notifier  Notifier
	templates map[NoticeType]NoticeTemplate
}

// NewNotificationManager creates a manager with the default notice templates.
func NewNotificationManager(notifier Notifier, baseUrl string) *NotificationManager {
	nm := &NotificationManager{
		BaseUrl:   baseUrl,
		notifier:  notifier,
		templates: make(map[NoticeType]NoticeTemplate),
	}
	for noticeType, template := range defaultTemplates {
		nm.templates[noticeType] = template
	}
	return nm
}

// RegisterNotice adds or replaces a notice template.
func (nm *NotificationManager) RegisterNotice(noticeType NoticeType, template NoticeTemplate) error {
	if noticeType == "" || template.Subject == "" {
		return fmt.Errorf("invalid input: notice type and subject cannot be empty")
	}
	nm.templates[noticeType] = template
	return nil
}

// Send renders and delivers the notice.
func (nm *NotificationManager) Send(noticeType NoticeType, notification NotificationData) error {
	template, exists := nm.templates[noticeType]
	if !exists {
		return fmt.Errorf("no template registered for notice type: %s", noticeType)
	}
	if nm.notifier == nil {
		return fmt.Errorf("no notifier registered")
	}
	return nm.notifier.Send(noticeType, notification, template)
}
