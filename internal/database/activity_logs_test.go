package database

import (
	"context"
	"testing"

	"touragency/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLog_AppendAndRead(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := int64(7)
	details := "User alice logged in"
	require.NoError(t, db.CreateActivityLog(ctx, &models.ActivityLogEntry{
		UserID:    &userID,
		Action:    models.ActionLogin,
		Details:   &details,
		IPAddress: "10.0.0.1",
	}))
	require.NoError(t, db.CreateActivityLog(ctx, &models.ActivityLogEntry{
		Action:    "ANONYMOUS",
		IPAddress: "10.0.0.2",
	}))

	entries, err := db.GetRecentActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	anon := entries[0]
	assert.Equal(t, "ANONYMOUS", anon.Action)
	assert.Nil(t, anon.UserID)
	assert.Nil(t, anon.Details)
	assert.False(t, anon.Timestamp.IsZero())

	login := entries[1]
	require.NotNil(t, login.UserID)
	assert.Equal(t, int64(7), *login.UserID)
	require.NotNil(t, login.Details)
	assert.Equal(t, details, *login.Details)
	assert.Equal(t, "10.0.0.1", login.IPAddress)
	assert.False(t, login.Timestamp.IsZero())
}
