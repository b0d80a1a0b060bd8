// Package workflow owns the lifecycle of a case: intake and routing, status transitions
// with their audit trail, and the read paths over cases.
package workflow

import (
	"context"
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/classifier"
	"crimereport/backend/internal/config"
	"crimereport/backend/internal/directory"
	"crimereport/backend/internal/metrics"
	"crimereport/backend/internal/models"
	"crimereport/backend/internal/notify"
	"crimereport/backend/internal/storage"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SubmitInput is the create-case request.
type SubmitInput struct {
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Region      string `json:"region"`
	Department  string `json:"department"`
	Commune     string `json:"commune"`
	Priority    string `json:"priority"`
	Anonymous   bool   `json:"anonymous"`
}

// ListFilter narrows the cases a viewer asks for. Visibility rules are applied on top.
type ListFilter struct {
	Status     string
	Category   string
	Region     string
	Department string
	Limit      int
	Offset     int
}

// Service handles the business logic of the case workflow.
type Service struct {
	Storage   storage.Storage
	Directory directory.AuthorityDirectory
	Notifier  notify.Notifier
	Metrics   *metrics.Collector
	Logger    *zap.Logger
}

// NewService creates a new workflow service. A nil notifier discards notifications.
func NewService(
	s storage.Storage,
	dir directory.AuthorityDirectory,
	n notify.Notifier,
	m *metrics.Collector,
	logger *zap.Logger,
) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	return &Service{
		Storage:   s,
		Directory: dir,
		Notifier:  n,
		Metrics:   m,
		Logger:    logger.Named("workflow"),
	}
}

// Submit routes and persists a new case together with its initial "submitted" event.
// A nil submitter files an anonymous case that nobody owns.
func (s *Service) Submit(ctx context.Context, submitter *models.User, in SubmitInput) (*models.Case, error) {
	kind, priority, err := validateSubmit(&in)
	if err != nil {
		return nil, err
	}

	cls := classifier.Classify(in.Category, in.Region, in.Description)
	if priority == "" {
		priority = models.Priority(cls.Priority)
	}

	c := &models.Case{
		Kind:               kind,
		Category:           in.Category,
		Title:              in.Title,
		Description:        in.Description,
		Region:             in.Region,
		Department:         in.Department,
		Commune:            in.Commune,
		Priority:           priority,
		AssignedDepartment: cls.Department,
		RoutingReason:      cls.Reason,
		RoutingKeywords:    cls.Keywords,
		IsAnonymous:        submitter == nil || in.Anonymous,
	}
	if submitter != nil {
		c.OwnerID = &submitter.ID
	}

	s.assignAuthority(ctx, c)

	initial := &models.StatusEvent{Status: models.StatusSubmitted, ActorID: c.OwnerID}
	if err := s.Storage.CreateCase(ctx, c, initial); err != nil {
		s.Logger.Error("Failed to create case", zap.String("department", c.AssignedDepartment), zap.Error(err))
		return nil, err
	}

	s.Metrics.CaseSubmitted(c.AssignedDepartment)
	s.Logger.Info("Case submitted",
		zap.String("case_id", c.ID),
		zap.String("department", c.AssignedDepartment),
		zap.String("priority", string(c.Priority)),
		zap.Bool("anonymous", c.IsAnonymous),
		zap.Bool("assigned", c.AssignedAuthorityID != nil),
	)
	return c, nil
}

// assignAuthority is best-effort: a directory miss or failure leaves the case unassigned.
func (s *Service) assignAuthority(ctx context.Context, c *models.Case) {
	if s.Directory == nil {
		return
	}
	authority, err := s.Directory.FindActiveAuthority(ctx, c.AssignedDepartment)
	if err != nil {
		s.Logger.Warn("Authority lookup failed, case left unassigned",
			zap.String("department", c.AssignedDepartment), zap.Error(err))
		return
	}
	if authority == nil {
		s.Logger.Info("No active authority for department", zap.String("department", c.AssignedDepartment))
		return
	}
	c.AssignedAuthorityID = &authority.ID
}

func validateSubmit(in *SubmitInput) (models.Kind, models.Priority, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Region = strings.TrimSpace(in.Region)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Category == "" {
		return "", "", fmt.Errorf("%w: category is required", apperr.ErrValidation)
	}
	if in.Region == "" {
		return "", "", fmt.Errorf("%w: region is required", apperr.ErrValidation)
	}
	if in.Title == "" && in.Description == "" {
		return "", "", fmt.Errorf("%w: a title or a description is required", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(in.Title) > config.MaxTitleLength {
		return "", "", fmt.Errorf("%w: title exceeds %d characters", apperr.ErrValidation, config.MaxTitleLength)
	}
	if utf8.RuneCountInString(in.Description) > config.MaxDescriptionLength {
		return "", "", fmt.Errorf("%w: description exceeds %d characters", apperr.ErrValidation, config.MaxDescriptionLength)
	}

	kind := models.KindReport
	switch models.Kind(in.Kind) {
	case "", models.KindReport:
	case models.KindComplaint:
		kind = models.KindComplaint
	default:
		return "", "", fmt.Errorf("%w: unknown kind %q", apperr.ErrValidation, in.Kind)
	}

	var priority models.Priority
	if in.Priority != "" {
		p, ok := models.ParsePriority(in.Priority)
		if !ok {
			return "", "", fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, in.Priority)
		}
		priority = p
	}
	return kind, priority, nil
}

// Transition moves a case to newStatus and appends the matching status event atomically.
// Any official may set any workflow state.
func (s *Service) Transition(ctx context.Context, caseID, newStatus, comment string, actor *models.User) (*models.Case, error) {
	if !actor.CanManageStatus() {
		return nil, fmt.Errorf("%w: only authorities, admins and moderators may change a case status", apperr.ErrForbidden)
	}
	status, ok := models.ParseStatus(newStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, newStatus)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > config.MaxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", apperr.ErrValidation, config.MaxCommentLength)
	}

	ev := &models.StatusEvent{Status: status, Comment: comment, ActorID: &actor.ID}
	c, err := s.Storage.UpdateCaseStatus(ctx, caseID, ev)
	if err != nil {
		return nil, err
	}

	s.Metrics.StatusChanged(string(status))
	s.Logger.Info("Case status changed",
		zap.String("case_id", c.ID),
		zap.String("status", string(status)),
		zap.String("actor", actor.ID),
	)

	if c.OwnerID != nil && *c.OwnerID != actor.ID {
		s.Notifier.Notify(ctx, *c.OwnerID, models.NotificationReportStatus, notify.Payload{
			CaseID:    c.ID,
			CaseTitle: caseTitle(c),
			Status:    status,
		})
	}
	return c, nil
}

// Get returns a case to an official or to its owner.
func (s *Service) Get(ctx context.Context, caseID string, viewer *models.User) (*models.Case, error) {
	c, err := s.Storage.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !canView(c, viewer) {
		return nil, fmt.Errorf("%w: case %s", apperr.ErrForbidden, caseID)
	}
	return c, nil
}

// History returns the status events of a case, oldest first.
func (s *Service) History(ctx context.Context, caseID string, viewer *models.User) ([]models.StatusEvent, error) {
	if _, err := s.Get(ctx, caseID, viewer); err != nil {
		return nil, err
	}
	return s.Storage.ListStatusEvents(ctx, caseID)
}

// List returns the cases visible to viewer, newest first.
// Citizens see their own cases, authorities the cases routed to their department,
// admins and moderators every case.
func (s *Service) List(ctx context.Context, viewer *models.User, f ListFilter) ([]models.Case, error) {
	if viewer == nil {
		return nil, fmt.Errorf("%w: listing cases requires a principal", apperr.ErrForbidden)
	}

	filter := storage.CaseFilter{
		Category:           strings.TrimSpace(f.Category),
		Region:             strings.TrimSpace(f.Region),
		AssignedDepartment: f.Department,
		Limit:              f.Limit,
		Offset:             f.Offset,
	}
	if f.Status != "" {
		status, ok := models.ParseStatus(f.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, f.Status)
		}
		filter.Status = status
	}
	if filter.Limit <= 0 {
		filter.Limit = config.DefaultPageSize
	}
	if filter.Limit > config.MaxPageSize {
		filter.Limit = config.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	switch {
	case !viewer.IsOfficial():
		filter.OwnerID = viewer.ID
	case viewer.Role == models.RoleAuthority && viewer.Department != "":
		filter.AssignedDepartment = viewer.Department
	}

	return s.Storage.ListCases(ctx, filter)
}

// Statistics returns the aggregate counters over every case.
func (s *Service) Statistics(ctx context.Context) (*models.Statistics, error) {
	return s.Storage.Statistics(ctx)
}

func canView(c *models.Case, viewer *models.User) bool {
	return viewer.IsOfficial() || viewer.Owns(c)
}

func caseTitle(c *models.Case) string {
	if c.Title != "" {
		return c.Title
	}
	return c.Category
}
