package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

type eventRepository interface {
	Create(ctx context.Context, dto CreateEventDTO) (*models.Event, error)
	FindByID(ctx context.Context, familyID, id uuid.UUID) (*models.Event, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID, from, to *time.Time) ([]models.Event, error)
	Save(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, familyID, id uuid.UUID) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
}

// Service exposes calendar event operations.
type Service interface {
	List(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) ([]EventDTO, error)
	GetByID(ctx context.Context, userID, familyID, eventID uuid.UUID) (*EventDTO, error)
	Create(ctx context.Context, userID, familyID uuid.UUID, input EventInput) (*EventDTO, error)
	Update(ctx context.Context, userID, familyID, eventID uuid.UUID, input EventInput) (*EventDTO, error)
	Delete(ctx context.Context, userID, familyID, eventID uuid.UUID) error
}

type service struct {
	repo        eventRepository
	memberships membershipsRepository
}

// NewService builds an event service with the provided repositories.
func NewService(repo eventRepository, membershipsRepo membershipsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{repo: repo, memberships: membershipsRepo}, nil
}

// EventInput is the full write shape for a calendar event.
type EventInput struct {
	Title   string
	Notes   *string
	StartAt time.Time
	EndAt   *time.Time
}

func (s *service) List(ctx context.Context, userID, familyID uuid.UUID, from, to *time.Time) ([]EventDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByFamily(ctx, familyID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	out := make([]EventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, userID, familyID, eventID uuid.UUID) (*EventDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	event, err := s.loadEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	return FromModel(event), nil
}

func (s *service) Create(ctx context.Context, userID, familyID uuid.UUID, input EventInput) (*EventDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, CreateEventDTO{
		FamilyID:  familyID,
		Title:     strings.TrimSpace(input.Title),
		Notes:     input.Notes,
		StartAt:   input.StartAt,
		EndAt:     input.EndAt,
		CreatedBy: userID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return FromModel(event), nil
}

func (s *service) Update(ctx context.Context, userID, familyID, eventID uuid.UUID, input EventInput) (*EventDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	event, err := s.loadEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Notes = input.Notes
	event.StartAt = input.StartAt
	event.EndAt = input.EndAt

	if err := s.repo.Save(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save event")
	}
	return FromModel(event), nil
}

func (s *service) Delete(ctx context.Context, userID, familyID, eventID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return err
	}

	if _, err := s.loadEvent(ctx, familyID, eventID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, familyID, eventID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	return nil
}

func validateInput(input EventInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event title is required")
	}
	if input.StartAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start_at is required")
	}
	if input.EndAt != nil && input.EndAt.Before(input.StartAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_at must not precede start_at")
	}
	return nil
}

func (s *service) loadEvent(ctx context.Context, familyID, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, familyID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
}

func (s *service) requireRole(ctx context.Context, userID, familyID uuid.UUID, minRole enums.FamilyRole) error {
	membership, err := s.memberships.GetMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this family")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !membership.Role.AtLeast(minRole) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}
	return nil
}
