package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"touragency/internal/events"
	"touragency/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	repo := new(mockActivityRepo)
	repo.On("CreateActivityLog", mock.Anything, mock.MatchedBy(func(e *models.ActivityLogEntry) bool {
		return e.Action == models.ActionLogin &&
			e.UserID != nil && *e.UserID == 5 &&
			e.Details != nil && *e.Details == "User bob logged in" &&
			e.IPAddress == "192.0.2.10" &&
			!e.Timestamp.IsZero()
	})).Return(nil).Once()

	bus := events.NewEventBus()
	var got events.ActivityPayload
	bus.Subscribe(events.EventActivity, func(e *events.Event) error { return e.Decode(&got) })

	al := NewActivityLogger(repo, bus, &logger)
	ctx := WithOrigin(context.Background(), "192.0.2.10")

	userID := int64(5)
	require.NoError(t, al.Log(ctx, &userID, models.ActionLogin, detailsf("User %s logged in", "bob")))

	repo.AssertExpectations(t)
	assert.Contains(t, buf.String(), `"action":"LOGIN"`)
	assert.Contains(t, buf.String(), `"ip":"192.0.2.10"`)
	assert.Contains(t, buf.String(), `"user_id":5`)
	assert.Equal(t, models.ActionLogin, got.Action)
	assert.Equal(t, "User bob logged in", got.Details)
}

func TestActivityLogger_Anonymous(t *testing.T) {
	repo := new(mockActivityRepo)
	repo.On("CreateActivityLog", mock.Anything, mock.MatchedBy(func(e *models.ActivityLogEntry) bool {
		return e.UserID == nil && e.Details == nil && e.IPAddress == ""
	})).Return(nil).Once()

	al := NewActivityLogger(repo, nil, nil)
	require.NoError(t, al.Log(context.Background(), nil, "PING", nil))
	repo.AssertExpectations(t)
}

func TestActivityLogger_StoreError(t *testing.T) {
	repo := new(mockActivityRepo)
	repo.On("CreateActivityLog", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	publisher := new(mockEventPublisher)
	al := NewActivityLogger(repo, publisher, nil)

	err := al.Log(context.Background(), nil, models.ActionLogout, nil)
	assert.ErrorContains(t, err, "disk full")
	publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "", OriginFrom(context.Background()))
	assert.Equal(t, "::1", OriginFrom(WithOrigin(context.Background(), "::1")))
}
