package notice

import (
	"embed"
	"log/slog"

	"github.com/tendant/simple-account/pkg/notification"
)

// Notice types for the account lifecycle
const (
	VerificationRequested      notification.NoticeType = "verification_requested"
	AdminVerificationRequested notification.NoticeType = "admin_verification_requested"
	RegistrationReceived       notification.NoticeType = "registration_received"
	AdminRegistrationReceived  notification.NoticeType = "admin_registration_received"
	VerificationCompleted      notification.NoticeType = "verification_completed"
	AdminAccountVerified       notification.NoticeType = "admin_account_verified"
	AccountUpdated             notification.NoticeType = "account_updated"
	ResetRequested             notification.NoticeType = "reset_requested"
	ResetCompleted             notification.NoticeType = "reset_completed"
	AccountActivated           notification.NoticeType = "account_activated"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

type registration struct {
	noticeType notification.NoticeType
	subject    string
	template   string
}

var emailNotices = []registration{
	{VerificationRequested, "Registration Verification", "templates/email/verification_requested.html"},
	{AdminVerificationRequested, "New Account Verification Requested", "templates/email/admin_verification_requested.html"},
	{RegistrationReceived, "Registration Received", "templates/email/registration_received.html"},
	{AdminRegistrationReceived, "New Account Registration", "templates/email/admin_registration_received.html"},
	{VerificationCompleted, "Registration Completed", "templates/email/verification_completed.html"},
	{AdminAccountVerified, "New Account Verified", "templates/email/admin_account_verified.html"},
	{AccountUpdated, "Account Updated", "templates/email/account_updated.html"},
	{ResetRequested, "Password Reset Requested", "templates/email/reset_requested.html"},
	{ResetCompleted, "Password Reset Completed", "templates/email/reset_completed.html"},
	{AccountActivated, "Account Activated", "templates/email/account_activated.html"},
}

// NewNotificationManager creates a notification manager with an email
// notifier and every account lifecycle template registered.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}
	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	if err := RegisterTemplates(notificationManager); err != nil {
		return nil, err
	}

	return notificationManager, nil
}

// RegisterTemplates registers the account lifecycle email templates on an
// existing manager. Useful when the notifier is provided separately (tests
// use this with a mock notifier).
func RegisterTemplates(nm *notification.NotificationManager) error {
	for _, n := range emailNotices {
		err := nm.RegisterNotification(n.noticeType, notification.EmailSystem, notification.NoticeTemplate{
			Subject: n.subject,
			Html:    loadTemplate(n.template),
		})
		if err != nil {
			slog.Error("failed to register notification", "error", err, "type", n.noticeType)
			return err
		}
	}
	return nil
}
