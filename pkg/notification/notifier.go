package notification

// NoticeType identifies a notification template.
type NoticeType string

const (
	EmailVerifyNotice   NoticeType = "email_verification"
	PasswordResetNotice NoticeType = "password_reset_init"
	WelcomeNotice       NoticeType = "welcome"
	OrderAssignedNotice NoticeType = "order_assigned"
)

// NoticeTemplate holds the renderable parts of a notice. Text and Html are
// Go text/html templates executed against NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// NotificationData carries the recipient and template values for one send.
type NotificationData struct {
	To   string            // Recipient address
	Data map[string]string // Template values
}

// Notifier delivers a rendered notice over one channel.
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
