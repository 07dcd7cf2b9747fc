package notification

// SentNotification records one delivery made through a MockNotifier
type SentNotification struct {
	Type     NoticeType
	Data     NotificationData
	Template NoticeTemplate
}

// MockNotifier records sends instead of delivering them. Intended for tests.
type MockNotifier struct {
	SentNotifications []SentNotification
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.SentNotifications = append(m.SentNotifications, SentNotification{
		Type:     noticeType,
		Data:     notification,
		Template: template,
	})
	return nil
}

// SentTo returns every notification sent to the given recipient
func (m *MockNotifier) SentTo(recipient string) []SentNotification {
	var result []SentNotification
	for _, sent := range m.SentNotifications {
		if sent.Data.To == recipient {
			result = append(result, sent)
		}
	}
	return result
}

// CountByType returns the number of sends for a notice type
func (m *MockNotifier) CountByType(noticeType NoticeType) int {
	count := 0
	for _, sent := range m.SentNotifications {
		if sent.Type == noticeType {
			count++
		}
	}
	return count
}
