package service

import (
	"context"
	"fmt"
	"time"

	"touragency/internal/domain"
	"touragency/internal/events"
	"touragency/internal/models"

	"github.com/rs/zerolog"
)

// ActivityLogger appends audit rows and mirrors each one to the process log.
type ActivityLogger struct {
	repo     domain.ActivityLogRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewActivityLogger(repo domain.ActivityLogRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ActivityLogger {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ActivityLogger{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Log records one action. The origin address comes from ctx (see WithOrigin).
func (l *ActivityLogger) Log(ctx context.Context, userID *int64, action string, details *string) error {
	entry := &models.ActivityLogEntry{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: OriginFrom(ctx),
		Timestamp: time.Now().UTC(),
	}

	if err := l.repo.CreateActivityLog(ctx, entry); err != nil {
		return fmt.Errorf("record %s activity: %w", action, err)
	}

	ev := l.logger.Info().Str("action", action).Str("ip", entry.IPAddress)
	if userID != nil {
		ev = ev.Int64("user_id", *userID)
	}
	if details != nil {
		ev = ev.Str("details", *details)
	}
	ev.Msg("activity")

	if l.eventBus != nil {
		payload := events.ActivityPayload{
			UserID:    userID,
			Action:    action,
			IPAddress: entry.IPAddress,
			Timestamp: entry.Timestamp,
		}
		if details != nil {
			payload.Details = *details
		}
		if err := l.eventBus.PublishJSON(events.EventActivity, payload); err != nil {
			l.logger.Warn().Err(err).Str("action", action).Msg("failed to publish activity event")
		}
	}

	return nil
}

func detailsf(format string, args ...interface{}) *string {
	s := fmt.Sprintf(format, args...)
	return &s
}
