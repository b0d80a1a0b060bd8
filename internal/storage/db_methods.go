package storage

import (
	"context"
	"crimereport/backend/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateCase inserts the case and its initial status event under one transaction.
func (s *Service) CreateCase(ctx context.Context, c *models.Case, initial *models.StatusEvent) error {
	now := nextTimestamp(time.Now(), time.Time{})
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Status = initial.Status

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		initial.CaseID = c.ID
		initial.CreatedAt = now
		return tx.Create(initial).Error
	})
	return wrapErr(err)
}

func (s *Service) GetCase(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

// ListCases returns matching cases, newest first.
func (s *Service) ListCases(ctx context.Context, f CaseFilter) ([]models.Case, error) {
	q := s.DB.WithContext(ctx).Model(&models.Case{})
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.AssignedDepartment != "" {
		q = q.Where("assigned_department = ?", f.AssignedDepartment)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var cases []models.Case
	if err := q.Order("created_at desc").Order("id").Find(&cases).Error; err != nil {
		return nil, wrapErr(err)
	}
	return cases, nil
}

// UpdateCaseStatus locks the case row, moves it to ev.Status and appends ev.
// The event time is strictly after every earlier event of the case.
func (s *Service) UpdateCaseStatus(ctx context.Context, caseID string, ev *models.StatusEvent) (*models.Case, error) {
	var c models.Case
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", caseID).First(&c).Error; err != nil {
			return err
		}

		var last models.StatusEvent
		err := tx.Where("case_id = ?", caseID).Order("created_at desc").Order("id desc").First(&last).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := nextTimestamp(time.Now(), last.CreatedAt)
		if err := tx.Model(&c).Updates(map[string]interface{}{
			"status":     ev.Status,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		c.Status = ev.Status
		c.UpdatedAt = now

		ev.ID = 0
		ev.CaseID = caseID
		ev.CreatedAt = now
		return tx.Create(ev).Error
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &c, nil
}

// ListStatusEvents returns the history of a case, oldest first.
func (s *Service) ListStatusEvents(ctx context.Context, caseID string) ([]models.StatusEvent, error) {
	var events []models.StatusEvent
	if err := s.DB.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at asc").Order("id asc").
		Find(&events).Error; err != nil {
		return nil, wrapErr(err)
	}
	return events, nil
}

type bucket struct {
	Label string
	Total int64
}

func (s *Service) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []bucket
	if err := s.DB.WithContext(ctx).Model(&models.Case{}).
		Select(column + " AS label, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Total
	}
	return out, nil
}

// Statistics aggregates every case. In-progress counts reviewing and investigating cases.
func (s *Service) Statistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	db := s.DB.WithContext(ctx).Model(&models.Case{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, wrapErr(err)
	}
	if err := s.DB.WithContext(ctx).Model(&models.Case{}).
		Where("status = ?", models.StatusResolved).
		Count(&stats.Resolved).Error; err != nil {
		return nil, wrapErr(err)
	}
	if err := s.DB.WithContext(ctx).Model(&models.Case{}).
		Where("status IN ?", []models.Status{models.StatusReviewing, models.StatusInvestigating}).
		Count(&stats.InProgress).Error; err != nil {
		return nil, wrapErr(err)
	}

	var err error
	if stats.ByCategory, err = s.countBy(ctx, "category"); err != nil {
		return nil, wrapErr(err)
	}
	if stats.ByRegion, err = s.countBy(ctx, "region"); err != nil {
		return nil, wrapErr(err)
	}
	if stats.ByDepartment, err = s.countBy(ctx, "assigned_department"); err != nil {
		return nil, wrapErr(err)
	}
	return &stats, nil
}

// AppendMessage locks the case row and appends the message after every existing one.
func (s *Service) AppendMessage(ctx context.Context, msg *models.Message) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Case
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", msg.CaseID).First(&c).Error; err != nil {
			return err
		}

		var last models.Message
		err := tx.Where("case_id = ?", msg.CaseID).Order("created_at desc").Order("id desc").First(&last).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		msg.ID = 0
		msg.Read = false
		msg.CreatedAt = nextTimestamp(time.Now(), last.CreatedAt)
		return tx.Create(msg).Error
	})
	return wrapErr(err)
}

func (s *Service) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.DB.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &msg, nil
}

// ListMessages returns the thread of a case, oldest first.
func (s *Service) ListMessages(ctx context.Context, caseID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.DB.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at asc").Order("id asc").
		Find(&msgs).Error; err != nil {
		return nil, wrapErr(err)
	}
	return msgs, nil
}

func (f MessageFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CaseID != "" {
		db = db.Where("case_id = ?", f.CaseID)
	}
	if f.MessageID != 0 {
		db = db.Where("id = ?", f.MessageID)
	}
	if f.SenderID != "" {
		db = db.Where("sender_id = ?", f.SenderID)
	}
	if f.ExcludeSenderID != "" {
		db = db.Where("sender_id <> ?", f.ExcludeSenderID)
	}
	if f.UnreadOnly {
		db = db.Where(map[string]interface{}{"read": false})
	}
	return db
}

func (s *Service) CountMessages(ctx context.Context, f MessageFilter) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Message{}).Scopes(f.apply).Count(&n).Error; err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

// MarkMessagesRead is a single UPDATE, so concurrent calls converge on the same rows.
func (s *Service) MarkMessagesRead(ctx context.Context, f MessageFilter) (int64, error) {
	f.UnreadOnly = true
	res := s.DB.WithContext(ctx).Model(&models.Message{}).Scopes(f.apply).Update("read", true)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

// SaveUser stores the principal in PostgreSQL
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	return wrapErr(s.DB.WithContext(ctx).Save(user).Error)
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// FindActiveAuthority returns the longest-serving active authority of the department.
func (s *Service) FindActiveAuthority(ctx context.Context, department string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("role = ? AND department = ? AND is_active = ?", models.RoleAuthority, department, true).
		Order("created_at asc").Order("id asc").
		First(&user).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := s.DB.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	var users []models.User
	if err := q.Order("created_at asc").Find(&users).Error; err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (s *Service) SaveNotification(ctx context.Context, n *models.Notification) error {
	return wrapErr(s.DB.WithContext(ctx).Create(n).Error)
}

// ListNotifications returns the inbox of a principal, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where(map[string]interface{}{"read": false})
	}
	var out []models.Notification
	if err := q.Order("created_at desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

// MarkNotificationRead flips one notification of the user. A notification of another user
// is reported as not found.
func (s *Service) MarkNotificationRead(ctx context.Context, userID string, id uint) (int64, error) {
	var n models.Notification
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return 0, wrapErr(err)
	}
	if n.Read {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Where(map[string]interface{}{"read": false}).
		Update("read", true)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where(map[string]interface{}{"read": false}).
		Update("read", true)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

var _ Storage = (*Service)(nil)