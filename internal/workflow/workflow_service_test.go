package workflow_test

import (
	"context"
	"crimereport/backend/internal/apperr"
	"crimereport/backend/internal/config"
	"crimereport/backend/internal/directory"
	"crimereport/backend/internal/models"
	"crimereport/backend/internal/notify"
	"crimereport/backend/internal/storage"
	"crimereport/backend/internal/workflow"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockNotifier records notifications synchronously.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, recipientID string, kind models.NotificationKind, payload notify.Payload) {
	m.Called(ctx, recipientID, kind, payload)
}

// MockDirectory is a testify double of directory.AuthorityDirectory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindActiveAuthority(ctx context.Context, department string) (*models.User, error) {
	args := m.Called(ctx, department)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	citizen   = &models.User{ID: "citizen-a", Role: models.RoleCitizen}
	neighbour = &models.User{ID: "citizen-b", Role: models.RoleCitizen}
	officer   = &models.User{ID: "officer-1", Role: models.RoleAuthority, Department: config.DepartmentPolice, IsActive: true}
	gendarme  = &models.User{ID: "gendarme-1", Role: models.RoleAuthority, Department: config.DepartmentGendarmerie, IsActive: true}
	admin     = &models.User{ID: "admin-1", Role: models.RoleAdmin}
	moderator = &models.User{ID: "mod-1", Role: models.RoleModerator}
)

func newService(t *testing.T) (*workflow.Service, *storage.Memory, *MockNotifier) {
	t.Helper()
	mem := storage.NewMemory()
	n := new(MockNotifier)
	dir := directory.Static{
		config.DepartmentPolice:      officer,
		config.DepartmentGendarmerie: gendarme,
	}
	return workflow.NewService(mem, dir, n, nil, zap.NewNop()), mem, n
}

func theftInDakar() workflow.SubmitInput {
	return workflow.SubmitInput{Category: "vol et cambriolage", Region: "Dakar", Title: "Téléphone volé", Description: "Au marché Sandaga"}
}

func TestSubmit_RoutesAndAssigns(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newService(t)

	c, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, c.Status)
	assert.Equal(t, config.DepartmentPolice, c.AssignedDepartment)
	assert.Equal(t, models.PriorityMedium, c.Priority, "priority defaults to the classifier's")
	assert.NotEmpty(t, c.RoutingReason)
	require.NotNil(t, c.AssignedAuthorityID)
	assert.Equal(t, officer.ID, *c.AssignedAuthorityID)
	require.NotNil(t, c.OwnerID)
	assert.Equal(t, citizen.ID, *c.OwnerID)
	assert.False(t, c.IsAnonymous)

	events, err := mem.ListStatusEvents(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusSubmitted, events[0].Status)
}

func TestSubmit_RuralTheftGoesToGendarmerie(t *testing.T) {
	svc, _, _ := newService(t)
	in := theftInDakar()
	in.Region = "Tambacounda"

	c, err := svc.Submit(context.Background(), citizen, in)
	require.NoError(t, err)
	assert.Equal(t, config.DepartmentGendarmerie, c.AssignedDepartment)
	require.NotNil(t, c.AssignedAuthorityID)
	assert.Equal(t, gendarme.ID, *c.AssignedAuthorityID)
}

func TestSubmit_NoAuthorityIsNotAnError(t *testing.T) {
	svc, _, _ := newService(t)
	in := workflow.SubmitInput{Category: "usurpation d'identité", Region: "Dakar", Description: "Faux profil"}

	c, err := svc.Submit(context.Background(), citizen, in)
	require.NoError(t, err)
	assert.Equal(t, config.DepartmentCDP, c.AssignedDepartment)
	assert.Equal(t, models.PriorityHigh, c.Priority)
	assert.Nil(t, c.AssignedAuthorityID)
}

func TestSubmit_DirectoryFailureLeavesCaseUnassigned(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("FindActiveAuthority", mock.Anything, config.DepartmentPolice).Return(nil, errors.New("directory unavailable"))
	svc := workflow.NewService(storage.NewMemory(), dir, nil, nil, zap.NewNop())

	c, err := svc.Submit(context.Background(), citizen, theftInDakar())
	require.NoError(t, err)
	assert.Nil(t, c.AssignedAuthorityID)
	dir.AssertExpectations(t)
}

func TestSubmit_Anonymous(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	t.Run("without a principal nobody owns the case", func(t *testing.T) {
		c, err := svc.Submit(ctx, nil, theftInDakar())
		require.NoError(t, err)
		assert.Nil(t, c.OwnerID)
		assert.True(t, c.IsAnonymous)
	})

	t.Run("an authenticated citizen keeps ownership", func(t *testing.T) {
		in := theftInDakar()
		in.Anonymous = true
		c, err := svc.Submit(ctx, citizen, in)
		require.NoError(t, err)
		require.NotNil(t, c.OwnerID)
		assert.True(t, c.IsAnonymous)
	})
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	tests := []struct {
		name string
		edit func(in *workflow.SubmitInput)
	}{
		{"missing category", func(in *workflow.SubmitInput) { in.Category = "  " }},
		{"missing region", func(in *workflow.SubmitInput) { in.Region = "" }},
		{"no title nor description", func(in *workflow.SubmitInput) { in.Title, in.Description = "", " " }},
		{"unknown kind", func(in *workflow.SubmitInput) { in.Kind = "petition" }},
		{"unknown priority", func(in *workflow.SubmitInput) { in.Priority = "critical" }},
		{"title too long", func(in *workflow.SubmitInput) { in.Title = strings.Repeat("a", config.MaxTitleLength+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := theftInDakar()
			tt.edit(&in)
			_, err := svc.Submit(context.Background(), citizen, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestSubmit_ExplicitPriorityAndKind(t *testing.T) {
	svc, _, _ := newService(t)
	in := theftInDakar()
	in.Priority = "urgent"
	in.Kind = "complaint"

	c, err := svc.Submit(context.Background(), citizen, in)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityUrgent, c.Priority)
	assert.Equal(t, models.KindComplaint, c.Kind)
}

func TestTransition_AppendsHistoryAndNotifiesOwner(t *testing.T) {
	ctx := context.Background()
	svc, mem, n := newService(t)
	c, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)

	n.On("Notify", mock.Anything, citizen.ID, models.NotificationReportStatus, mock.MatchedBy(func(p notify.Payload) bool {
		return p.CaseID == c.ID && p.CaseTitle == "Téléphone volé"
	})).Return().Times(3)

	for _, st := range []string{"reviewing", "investigating", "resolved"} {
		updated, err := svc.Transition(ctx, c.ID, st, "suivi", officer)
		require.NoError(t, err)
		assert.Equal(t, models.Status(st), updated.Status)
	}

	events, err := svc.History(ctx, c.ID, citizen)
	require.NoError(t, err)
	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i].CreatedAt.After(events[i-1].CreatedAt))
	}
	assert.Equal(t, "suivi", events[3].Comment)
	require.NotNil(t, events[3].ActorID)
	assert.Equal(t, officer.ID, *events[3].ActorID)

	stored, err := mem.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, events[len(events)-1].Status, stored.Status)
	n.AssertExpectations(t)
}

func TestTransition_AnyOfficialMaySetAnyState(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)
	n.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	c, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)

	steps := []struct {
		actor  *models.User
		status string
	}{
		{moderator, "resolved"},
		{admin, "submitted"},
		{gendarme, "closed"},
		{officer, "reviewing"},
	}
	for _, step := range steps {
		updated, err := svc.Transition(ctx, c.ID, step.status, "", step.actor)
		require.NoError(t, err)
		assert.Equal(t, models.Status(step.status), updated.Status)
	}
}

func TestTransition_Failures(t *testing.T) {
	ctx := context.Background()
	svc, mem, n := newService(t)
	c, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)

	t.Run("citizen is forbidden", func(t *testing.T) {
		_, err := svc.Transition(ctx, c.ID, "resolved", "", citizen)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("nil principal is forbidden", func(t *testing.T) {
		_, err := svc.Transition(ctx, c.ID, "resolved", "", nil)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("role is checked before status", func(t *testing.T) {
		_, err := svc.Transition(ctx, c.ID, "archived", "", citizen)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("unknown status leaves the case untouched", func(t *testing.T) {
		_, err := svc.Transition(ctx, c.ID, "archived", "", officer)
		assert.ErrorIs(t, err, apperr.ErrInvalidStatus)

		stored, err := mem.GetCase(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSubmitted, stored.Status)
		events, err := mem.ListStatusEvents(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("unknown case", func(t *testing.T) {
		_, err := svc.Transition(ctx, "no-such-case", "resolved", "", officer)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_AnonymousCaseNotifiesNobody(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)
	c, err := svc.Submit(ctx, nil, theftInDakar())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, c.ID, "reviewing", "", officer)
	require.NoError(t, err)
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAndHistory_Access(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	c, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)

	_, err = svc.Get(ctx, c.ID, citizen)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, c.ID, gendarme)
	assert.NoError(t, err, "officials can open any case")
	_, err = svc.Get(ctx, c.ID, neighbour)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.History(ctx, c.ID, neighbour)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.Get(ctx, "missing", admin)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList_Visibility(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	mine, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)
	rural := theftInDakar()
	rural.Region = "Kolda"
	theirs, err := svc.Submit(ctx, neighbour, rural)
	require.NoError(t, err)

	ids := func(cases []models.Case) []string {
		var out []string
		for _, c := range cases {
			out = append(out, c.ID)
		}
		return out
	}

	got, err := svc.List(ctx, citizen, workflow.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, ids(got))

	got, err = svc.List(ctx, officer, workflow.ListFilter{Department: config.DepartmentGendarmerie})
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, ids(got), "authorities only see their own department")

	got, err = svc.List(ctx, admin, workflow.ListFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mine.ID, theirs.ID}, ids(got))

	got, err = svc.List(ctx, moderator, workflow.ListFilter{Department: config.DepartmentGendarmerie})
	require.NoError(t, err)
	assert.Equal(t, []string{theirs.ID}, ids(got))

	_, err = svc.List(ctx, admin, workflow.ListFilter{Status: "archived"})
	assert.ErrorIs(t, err, apperr.ErrInvalidStatus)

	_, err = svc.List(ctx, nil, workflow.ListFilter{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService(t)
	n.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	c, err := svc.Submit(ctx, citizen, theftInDakar())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, citizen, workflow.SubmitInput{Category: "phishing", Region: "Dakar", Title: "Faux SMS"})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, c.ID, "investigating", "", officer)
	require.NoError(t, err)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(1), stats.ByDepartment[config.DepartmentDSC])
}
