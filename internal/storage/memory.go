package storage

import (
	"context"
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/models"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is a process-local Storage. It backs STORAGE_DRIVER=memory and the service tests.
// One mutex serializes every operation, which gives the same atomicity as the SQL transactions.
type Memory struct {
	mu sync.Mutex

	cases         map[string]*models.Case
	events        []models.StatusEvent
	messages      []models.Message
	users         map[string]*models.User
	notifications []models.Notification
	published     []models.Notification

	nextEventID        uint
	nextMessageID      uint
	nextNotificationID uint

	// Now is the clock used for creation times.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		cases: make(map[string]*models.Case),
		users: make(map[string]*models.User),
		Now:   time.Now,
	}
}

func (m *Memory) CreateCase(_ context.Context, c *models.Case, initial *models.StatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := c.BeforeCreate(nil); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if _, exists := m.cases[c.ID]; exists {
		return fmt.Errorf("%w: duplicate case id %s", apperr.ErrStorage, c.ID)
	}

	now := nextTimestamp(m.Now(), time.Time{})
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Status = initial.Status

	m.nextEventID++
	initial.ID = m.nextEventID
	initial.CaseID = c.ID
	initial.CreatedAt = now

	stored := *c
	m.cases[c.ID] = &stored
	m.events = append(m.events, *initial)
	return nil
}

func (m *Memory) GetCase(_ context.Context, id string) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *Memory) ListCases(_ context.Context, f CaseFilter) ([]models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Case
	for _, c := range m.cases {
		if f.OwnerID != "" && (c.OwnerID == nil || *c.OwnerID != f.OwnerID) {
			continue
		}
		if f.AssignedDepartment != "" && c.AssignedDepartment != f.AssignedDepartment {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Region != "" && c.Region != f.Region {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) UpdateCaseStatus(_ context.Context, caseID string, ev *models.StatusEvent) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[caseID]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	var last time.Time
	for i := range m.events {
		if m.events[i].CaseID == caseID && m.events[i].CreatedAt.After(last) {
			last = m.events[i].CreatedAt
		}
	}
	now := nextTimestamp(m.Now(), last)

	c.Status = ev.Status
	c.UpdatedAt = now

	m.nextEventID++
	ev.ID = m.nextEventID
	ev.CaseID = caseID
	ev.CreatedAt = now
	m.events = append(m.events, *ev)

	out := *c
	return &out, nil
}

func (m *Memory) ListStatusEvents(_ context.Context, caseID string) ([]models.StatusEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.StatusEvent
	for _, ev := range m.events {
		if ev.CaseID == caseID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) Statistics(_ context.Context) (*models.Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.Statistics{
		ByCategory:   make(map[string]int64),
		ByRegion:     make(map[string]int64),
		ByDepartment: make(map[string]int64),
	}
	for _, c := range m.cases {
		stats.Total++
		switch c.Status {
		case models.StatusResolved:
			stats.Resolved++
		case models.StatusReviewing, models.StatusInvestigating:
			stats.InProgress++
		}
		stats.ByCategory[c.Category]++
		stats.ByRegion[c.Region]++
		stats.ByDepartment[c.AssignedDepartment]++
	}
	return stats, nil
}

func (m *Memory) AppendMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cases[msg.CaseID]; !ok {
		return apperr.ErrNotFound
	}

	var last time.Time
	for i := range m.messages {
		if m.messages[i].CaseID == msg.CaseID && m.messages[i].CreatedAt.After(last) {
			last = m.messages[i].CreatedAt
		}
	}

	m.nextMessageID++
	msg.ID = m.nextMessageID
	msg.Read = false
	msg.CreatedAt = nextTimestamp(m.Now(), last)
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *Memory) GetMessage(_ context.Context, id uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.messages {
		if msg.ID == id {
			return &msg, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) ListMessages(_ context.Context, caseID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Message
	for _, msg := range m.messages {
		if msg.CaseID == caseID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *Memory) CountMessages(_ context.Context, f MessageFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for i := range m.messages {
		if f.matches(&m.messages[i]) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) MarkMessagesRead(_ context.Context, f MessageFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f.UnreadOnly = true
	var n int64
	for i := range m.messages {
		if f.matches(&m.messages[i]) {
			m.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *Memory) SaveUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := user.BeforeCreate(nil); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	for _, u := range m.users {
		if u.Username == user.Username && u.ID != user.ID {
			return fmt.Errorf("%w: username %q already taken", apperr.ErrStorage, user.Username)
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.Now().UTC()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) FindActiveAuthority(ctx context.Context, department string) (*models.User, error) {
	users, err := m.ListUsers(ctx, UserFilter{Role: models.RoleAuthority, Department: department})
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].IsActive {
			return &users[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// ListUsers returns matching users, oldest account first.
func (m *Memory) ListUsers(_ context.Context, f UserFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.User
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Department != "" && u.Department != f.Department {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SaveNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextNotificationID++
	n.ID = m.nextNotificationID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.Now().UTC()
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

// ListNotifications returns the inbox of a principal, newest first.
func (m *Memory) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID string, id uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notifications {
		n := &m.notifications[i]
		if n.ID != id || n.UserID != userID {
			continue
		}
		if n.Read {
			return 0, nil
		}
		n.Read = true
		return 1, nil
	}
	return 0, apperr.ErrNotFound
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && !m.notifications[i].Read {
			m.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

// PublishNotification records the notification; Published returns what was recorded.
func (m *Memory) PublishNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published = append(m.published, *n)
	return nil
}

func (m *Memory) Published() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.Notification(nil), m.published...)
}

var _ Storage = (*Memory)(nil)
