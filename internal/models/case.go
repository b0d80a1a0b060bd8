package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Kind distinguishes the two intake forms that produce a case.
type Kind string

const (
	KindReport    Kind = "report"
	KindComplaint Kind = "complaint"
)

// Status is a workflow state of a case.
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusReviewing     Status = "reviewing"
	StatusInvestigating Status = "investigating"
	StatusForwarded     Status = "forwarded"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

// Statuses lists every workflow state in lifecycle order.
var Statuses = []Status{
	StatusSubmitted,
	StatusReviewing,
	StatusInvestigating,
	StatusForwarded,
	StatusResolved,
	StatusClosed,
}

// ParseStatus returns the status named by s and whether it is one of the workflow states.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further work is expected on a case in this state.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// Priority mirrors the urgency levels used by categories and the classifier.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority returns the priority named by s and whether it is known.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

// Case is a citizen report or complaint together with its routing decision.
type Case struct {
	ID          string `gorm:"primaryKey" json:"id"` // UUID
	Kind        Kind   `gorm:"type:text;not null;default:report" json:"kind"`
	Category    string `gorm:"type:text;not null;index" json:"category"`
	Title       string `json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Location triple. Department here is the administrative département, not the routing target.
	Region     string `gorm:"type:text;not null;index" json:"region"`
	Department string `json:"department,omitempty"`
	Commune    string `json:"commune,omitempty"`

	Status   Status   `gorm:"type:text;not null;default:submitted;index" json:"status"`
	Priority Priority `gorm:"type:text;not null;default:medium" json:"priority"`

	// Routing decision taken at creation.
	AssignedDepartment string         `gorm:"type:text;not null;index" json:"assigned_department"`
	RoutingReason      string         `json:"routing_reason"`
	RoutingKeywords    pq.StringArray `gorm:"type:text[]" json:"routing_keywords,omitempty"`

	OwnerID             *string `gorm:"type:text;index" json:"owner_id,omitempty"`
	IsAnonymous         bool    `gorm:"not null;default:false" json:"is_anonymous"`
	AssignedAuthorityID *string `gorm:"type:text;index" json:"assigned_authority_id,omitempty"`

	CreatedAt time.Time `gorm:"<-:create;not null;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for the case if ID is not set yet.
func (c *Case) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// StatusEvent is one immutable entry of a case's status history.
type StatusEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CaseID    string    `gorm:"type:text;not null;index:idx_case_event,priority:1" json:"case_id"`
	Status    Status    `gorm:"type:text;not null" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	ActorID   *string   `gorm:"type:text" json:"actor_id,omitempty"` // nil for an anonymous submission
	CreatedAt time.Time `gorm:"<-:create;not null;index:idx_case_event,priority:2" json:"created_at"`
}
