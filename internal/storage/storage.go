// Package storage is the Case Store: cases with their status history, case threads,
// principals and notification inboxes.
package storage

import (
	"context"
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Storage interface {
	// CreateCase persists the case and its initial status event in one transaction.
	CreateCase(ctx context.Context, c *models.Case, initial *models.StatusEvent) error
	GetCase(ctx context.Context, id string) (*models.Case, error)
	ListCases(ctx context.Context, f CaseFilter) ([]models.Case, error)
	// UpdateCaseStatus sets the case status to ev.Status and appends ev in one transaction.
	UpdateCaseStatus(ctx context.Context, caseID string, ev *models.StatusEvent) (*models.Case, error)
	ListStatusEvents(ctx context.Context, caseID string) ([]models.StatusEvent, error)
	Statistics(ctx context.Context) (*models.Statistics, error)

	AppendMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	ListMessages(ctx context.Context, caseID string) ([]models.Message, error)
	CountMessages(ctx context.Context, f MessageFilter) (int64, error)
	// MarkMessagesRead flips every unread message matching f and returns how many changed.
	MarkMessagesRead(ctx context.Context, f MessageFilter) (int64, error)

	SaveUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindActiveAuthority(ctx context.Context, department string) (*models.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)

	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, id uint) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)

	PublishNotification(ctx context.Context, n *models.Notification) error
}

// CaseFilter narrows ListCases. Zero fields do not filter.
type CaseFilter struct {
	OwnerID            string
	AssignedDepartment string
	Status             models.Status
	Category           string
	Region             string
	Limit              int
	Offset             int
}

// MessageFilter selects messages of one case thread.
// SenderID keeps only messages from that sender, ExcludeSenderID drops them.
type MessageFilter struct {
	CaseID          string
	MessageID       uint
	SenderID        string
	ExcludeSenderID string
	UnreadOnly      bool
}

func (f MessageFilter) matches(m *models.Message) bool {
	if f.CaseID != "" && m.CaseID != f.CaseID {
		return false
	}
	if f.MessageID != 0 && m.ID != f.MessageID {
		return false
	}
	if f.SenderID != "" && m.SenderID != f.SenderID {
		return false
	}
	if f.ExcludeSenderID != "" && m.SenderID == f.ExcludeSenderID {
		return false
	}
	if f.UnreadOnly && m.Read {
		return false
	}
	return true
}

// UserFilter narrows ListUsers. Zero fields do not filter.
type UserFilter struct {
	Role       models.Role
	Department string
}

// NotificationChannel is the Redis channel carrying a principal's notifications.
func NotificationChannel(userID string) string {
	return "notifications:" + userID
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil, in which case publishing is a no-op.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// AutoMigrate creates or updates every table of the Case Store.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Case{},
		&models.StatusEvent{},
		&models.Message{},
		&models.Notification{},
	)
}

// PublishNotification publishes the notification on the recipient's Redis channel.
func (s *Service) PublishNotification(ctx context.Context, n *models.Notification) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, NotificationChannel(n.UserID), string(payload)).Err(); err != nil {
		return fmt.Errorf("%w: publish notification: %w", apperr.ErrStorage, err)
	}
	return nil
}

// wrapErr maps driver errors onto the error taxonomy.
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrStorage):
		return err
	}
	return fmt.Errorf("%w: %w", apperr.ErrStorage, err)
}

// nextTimestamp returns a creation time strictly after last, at the microsecond precision
// PostgreSQL stores.
func nextTimestamp(now, last time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	return now
}
