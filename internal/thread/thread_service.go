// Package thread implements the message thread attached to each case and the access rule
// that decides who may read and write it.
//
// A case has two sides: the citizen side (its owner, or nobody for an anonymous case) and the
// official side (every authority, admin and moderator, counted as one counterpart). The read
// flag of a message records whether the other side has seen it, so unread counts are a view
// computed from the viewer rather than stored per viewer.
package thread

import (
	"context"
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/config"
	"crimereport/backend/internal/metrics"
	"crimereport/backend/internal/models"
	"crimereport/backend/internal/notify"
	"crimereport/backend/internal/storage"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

type Service struct {
	Storage  storage.Storage
	Notifier notify.Notifier
	Metrics  *metrics.Collector
	Logger   *zap.Logger
}

// NewService creates a new thread service. A nil notifier discards notifications.
func NewService(s storage.Storage, n notify.Notifier, m *metrics.Collector, logger *zap.Logger) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	return &Service{
		Storage:  s,
		Notifier: n,
		Metrics:  m,
		Logger:   logger.Named("thread"),
	}
}

// CanAccess reports whether p may read and write the thread of c.
func CanAccess(c *models.Case, p *models.User) bool {
	return p.IsOfficial() || p.Owns(c)
}

// incoming returns the filter selecting the messages p receives on c, i.e. those sent by the
// other side. ok is false when p has no counterpart on the case.
func incoming(c *models.Case, p *models.User) (f storage.MessageFilter, ok bool) {
	f.CaseID = c.ID
	switch {
	case p.Owns(c):
		f.ExcludeSenderID = p.ID
		return f, true
	case p.IsOfficial() && c.OwnerID != nil:
		f.SenderID = *c.OwnerID
		return f, true
	}
	return f, false
}

func (s *Service) loadCase(ctx context.Context, caseID string, p *models.User) (*models.Case, error) {
	c, err := s.Storage.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(c, p) {
		return nil, fmt.Errorf("%w: no access to the thread of case %s", apperr.ErrForbidden, caseID)
	}
	return c, nil
}

// Send appends a message to the thread after every existing message and notifies the other side.
func (s *Service) Send(ctx context.Context, caseID string, sender *models.User, body string) (*models.Message, error) {
	c, err := s.loadCase(ctx, caseID, sender)
	if err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is empty", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(body) > config.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", apperr.ErrValidation, config.MaxMessageLength)
	}

	msg := &models.Message{CaseID: c.ID, SenderID: sender.ID, Body: body}
	if err := s.Storage.AppendMessage(ctx, msg); err != nil {
		s.Logger.Error("Failed to append message", zap.String("case_id", c.ID), zap.Error(err))
		return nil, err
	}

	side := "official"
	if sender.Owns(c) {
		side = "citizen"
	}
	s.Metrics.MessageSent(side)

	payload := notify.Payload{CaseID: c.ID, CaseTitle: c.Title}
	if payload.CaseTitle == "" {
		payload.CaseTitle = c.Category
	}
	if recipient := counterpart(c, sender); recipient != "" {
		s.Notifier.Notify(ctx, recipient, models.NotificationNewMessage, payload)
	}
	return msg, nil
}

// counterpart is the principal notified of a message from sender: the assigned authority for
// the owner's messages, the owner for everyone else's.
func counterpart(c *models.Case, sender *models.User) string {
	if sender.Owns(c) {
		if c.AssignedAuthorityID != nil && *c.AssignedAuthorityID != sender.ID {
			return *c.AssignedAuthorityID
		}
		return ""
	}
	if c.OwnerID != nil {
		return *c.OwnerID
	}
	return ""
}

// List returns every message of the thread, oldest first, from both sides.
func (s *Service) List(ctx context.Context, caseID string, viewer *models.User) ([]models.Message, error) {
	if _, err := s.loadCase(ctx, caseID, viewer); err != nil {
		return nil, err
	}
	return s.Storage.ListMessages(ctx, caseID)
}

// UnreadCount counts the unread messages sent to viewer by the other side of the case.
func (s *Service) UnreadCount(ctx context.Context, caseID string, viewer *models.User) (int64, error) {
	c, err := s.loadCase(ctx, caseID, viewer)
	if err != nil {
		return 0, err
	}
	f, ok := incoming(c, viewer)
	if !ok {
		return 0, nil
	}
	f.UnreadOnly = true
	return s.Storage.CountMessages(ctx, f)
}

// MarkRead flips every message UnreadCount would count and returns how many changed.
// A second call with no new messages returns 0.
func (s *Service) MarkRead(ctx context.Context, caseID string, viewer *models.User) (int64, error) {
	c, err := s.loadCase(ctx, caseID, viewer)
	if err != nil {
		return 0, err
	}
	f, ok := incoming(c, viewer)
	if !ok {
		return 0, nil
	}

	n, err := s.Storage.MarkMessagesRead(ctx, f)
	if err != nil {
		return 0, err
	}
	s.Metrics.MessagesMarkedRead(n)
	return n, nil
}

// MarkOneRead flips a single message if it was sent to viewer by the other side.
// Marking one's own message changes nothing and returns 0.
func (s *Service) MarkOneRead(ctx context.Context, messageID uint, viewer *models.User) (int64, error) {
	msg, err := s.Storage.GetMessage(ctx, messageID)
	if err != nil {
		return 0, err
	}
	c, err := s.loadCase(ctx, msg.CaseID, viewer)
	if err != nil {
		return 0, err
	}
	f, ok := incoming(c, viewer)
	if !ok {
		return 0, nil
	}
	f.MessageID = messageID

	n, err := s.Storage.MarkMessagesRead(ctx, f)
	if err != nil {
		return 0, err
	}
	s.Metrics.MessagesMarkedRead(n)
	return n, nil
}

// Summary returns the message total and the viewer's unread count for a case.
func (s *Service) Summary(ctx context.Context, caseID string, viewer *models.User) (*models.ThreadSummary, error) {
	c, err := s.loadCase(ctx, caseID, viewer)
	if err != nil {
		return nil, err
	}

	summary := &models.ThreadSummary{CaseID: c.ID}
	if summary.Total, err = s.Storage.CountMessages(ctx, storage.MessageFilter{CaseID: c.ID}); err != nil {
		return nil, err
	}
	if f, ok := incoming(c, viewer); ok {
		f.UnreadOnly = true
		if summary.Unread, err = s.Storage.CountMessages(ctx, f); err != nil {
			return nil, err
		}
	}
	return summary, nil
}
