package models

import "time"

// Message is one entry of the thread attached to a case.
// Read is directional: it records whether the other side of the case has seen the message.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CaseID    string    `gorm:"type:text;not null;index:idx_case_msg,priority:1;index:idx_case_read,priority:1" json:"case_id"`
	SenderID  string    `gorm:"type:text;not null" json:"sender_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Read      bool      `gorm:"not null;default:false;index:idx_case_read,priority:2" json:"read"`
	CreatedAt time.Time `gorm:"<-:create;not null;index:idx_case_msg,priority:2" json:"created_at"`
}

// TableName keeps case messages apart from any other messaging tables.
func (Message) TableName() string {
	return "case_messages"
}

// ThreadSummary is the per-viewer digest of a case thread.
type ThreadSummary struct {
	CaseID string `json:"case_id"`
	Total  int64  `json:"total"`
	Unread int64  `json:"unread"`
}
