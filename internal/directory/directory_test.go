package directory_test

import (
	"context"
	"crimereport/backend/internal/directory"
	"crimereport/backend/internal/models"
	"crimereport/backend/internal/storage"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_FindActiveAuthority(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	officer := &models.User{Username: "cyber-1", Role: models.RoleAuthority, Department: "dsc", IsActive: true}
	require.NoError(t, mem.SaveUser(ctx, officer))
	require.NoError(t, mem.SaveUser(ctx, &models.User{Username: "cyber-2", Role: models.RoleAuthority, Department: "dsc"}))

	dir := directory.NewService(mem)

	got, err := dir.FindActiveAuthority(ctx, "dsc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, officer.ID, got.ID)

	got, err = dir.FindActiveAuthority(ctx, "cdp")
	assert.NoError(t, err, "a department without authorities is not an error")
	assert.Nil(t, got)

	all, err := dir.Authorities(ctx, "dsc")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStatic_FindActiveAuthority(t *testing.T) {
	dir := directory.Static{
		"police": {ID: "p1", Role: models.RoleAuthority, IsActive: true},
		"cdp":    {ID: "c1", Role: models.RoleAuthority, IsActive: false},
	}

	got, err := dir.FindActiveAuthority(context.Background(), "police")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	got, err = dir.FindActiveAuthority(context.Background(), "cdp")
	require.NoError(t, err)
	assert.Nil(t, got)
}

var _ directory.AuthorityDirectory = (*directory.Service)(nil)
var _ directory.AuthorityDirectory = directory.Static{}
