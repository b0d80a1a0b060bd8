package models

import "time"

// NotificationKind classifies inbox entries.
type NotificationKind string

const (
	NotificationReportStatus NotificationKind = "report_status"
	NotificationNewMessage   NotificationKind = "new_message"
	NotificationSystem       NotificationKind = "system"
)

// Notification is an inbox entry for a principal. Clients poll for them.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"type:text;not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"type:text;not null;default:system" json:"kind"`
	Title     string           `json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	CaseID    string           `gorm:"type:text" json:"case_id,omitempty"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Statistics is the public aggregate view of all cases.
type Statistics struct {
	Total        int64            `json:"total"`
	Resolved     int64            `json:"resolved"`
	InProgress   int64            `json:"in_progress"`
	ByCategory   map[string]int64 `json:"by_category"`
	ByRegion     map[string]int64 `json:"by_region"`
	ByDepartment map[string]int64 `json:"by_department"`
}
