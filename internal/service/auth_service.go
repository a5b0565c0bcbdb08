package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"touragency/internal/database"
	"touragency/internal/domain"
	"touragency/internal/events"
	"touragency/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the raw registration form. Username and Email are trimmed
// before the validate tags run.
type RegisterInput struct {
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

type AuthService struct {
	users      domain.UserRepository
	activity   *ActivityLogger
	eventBus   domain.EventPublisher
	bcryptCost int
	logger     *zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users domain.UserRepository, activity *ActivityLogger, eventBus domain.EventPublisher, bcryptCost int, logger *zerolog.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AuthService{
		users:      users,
		activity:   activity,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.activity.Log(ctx, &user.ID, models.ActionRegister, detailsf("User %s registered", user.Username)); err != nil {
		return nil, err
	}
	s.publish(events.EventUserRegistered, user)

	return user, nil
}

// Login returns the user whose bcrypt hash matches password. Unknown users and
// wrong passwords both yield ErrAuth.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// burn comparable time so response latency does not reveal the miss
			_ = bcrypt.CompareHashAndPassword(s.dummy(), passwordKey(password))
			return nil, ErrAuth
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(password)); err != nil {
		return nil, ErrAuth
	}

	if err := s.activity.Log(ctx, &user.ID, models.ActionLogin, detailsf("User %s logged in", user.Username)); err != nil {
		return nil, err
	}
	s.publish(events.EventUserLoggedIn, user)

	return user, nil
}

// Logout records the action; clearing the session is up to the caller.
func (s *AuthService) Logout(ctx context.Context, userID int64, username string) error {
	if err := s.activity.Log(ctx, &userID, models.ActionLogout, detailsf("User %s logged out", username)); err != nil {
		return err
	}
	s.publish(events.EventUserLoggedOut, &models.User{ID: userID, Username: username})
	return nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
	})
	return s.dummyHash
}

func (s *AuthService) publish(eventType string, user *models.User) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, user); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
