package notification

// NotificationSystem represents a delivery channel (e.g., email, SMS).
type NotificationSystem string

// NoticeType identifies a kind of notification (e.g., "reset_requested").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
	SMSSystem   NotificationSystem = "sms"
)

// NoticeTemplate holds the subject and body templates for a notice
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// NotificationData carries the recipient and template data for a single send
type NotificationData struct {
	To   string            // Recipient identifier (e.g., email address)
	Data map[string]string // Template data
}

// Notifier delivers a rendered notice over one system
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
