// Package waitlist manages early-access signups.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
)

// ErrEmailRequired is returned for blank emails.
var ErrEmailRequired = errors.New("email is required")

// Repository persists signups.
type Repository interface {
	Create(ctx context.Context, signup *models.Signup) error
	GetByEmail(ctx context.Context, email string) (*models.Signup, error)
	List(ctx context.Context) ([]*models.Signup, error)
	Count(ctx context.Context) (int, error)
}

// Service accepts and lists waitlist signups.
type Service struct {
	repo   Repository
	events events.Repository
	logger zerolog.Logger
}

// NewService creates a Service. A nil event repository disables audit events.
func NewService(repo Repository, eventRepo events.Repository) *Service {
	if eventRepo == nil {
		eventRepo = events.Discard
	}
	return &Service{
		repo:   repo,
		events: eventRepo,
		logger: logging.Component("waitlist"),
	}
}

// Join adds email to the waitlist. The email is only trimmed, never
// validated further. Joining twice returns the existing signup with
// created=false.
func (s *Service) Join(ctx context.Context, email, source string) (signup *models.Signup, created bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, ErrEmailRequired
	}

	signup = &models.Signup{Email: email, Source: strings.TrimSpace(source)}
	err = s.repo.Create(ctx, signup)
	if errors.Is(err, db.ErrSignupExists) {
		existing, getErr := s.repo.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, false, fmt.Errorf("load existing signup: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("join waitlist: %w", err)
	}

	if err := events.LogWaitlistJoined(ctx, s.events, signup); err != nil {
		s.logger.Warn().Err(err).Str("signup_id", signup.ID).Msg("failed to log waitlist event")
	}
	s.logger.Info().Str("signup_id", signup.ID).Str("source", signup.Source).Msg("waitlist signup")
	return signup, true, nil
}

// List returns every signup, oldest first.
func (s *Service) List(ctx context.Context) ([]*models.Signup, error) {
	return s.repo.List(ctx)
}

// Count returns the number of signups.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
