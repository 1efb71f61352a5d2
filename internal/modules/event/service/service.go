package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/event/dto"
	"anoa.com/campushub/internal/modules/event/repository"
	"anoa.com/campushub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventService interface {
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Event, error)
	ListAll(ctx context.Context) ([]entity.Event, error)
	Validate(input dto.EventInput) error
	Create(ctx context.Context, ownerID uuid.UUID, input dto.EventInput) (*entity.Event, error)
	Get(ctx context.Context, id uint) (*entity.Event, error)
	AuthorizeOwner(ev *entity.Event, principalID uuid.UUID) error
	GetOwned(ctx context.Context, id uint, principalID uuid.UUID) (*entity.Event, error)
	Update(ctx context.Context, ev *entity.Event, patch dto.EventPatch) (*entity.Event, error)
	UpdateOwned(ctx context.Context, id uint, principalID uuid.UUID, patch dto.EventPatch) (*entity.Event, error)
	Delete(ctx context.Context, id uint) error
	DeleteOwned(ctx context.Context, id uint, principalID uuid.UUID) error
}

type eventService struct {
	repo repository.EventRepository
}

func NewEventService(repo repository.EventRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Event, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *eventService) ListAll(ctx context.Context) ([]entity.Event, error) {
	return s.repo.FindAll(ctx)
}

func (s *eventService) Validate(input dto.EventInput) error {
	_, err := buildEvent(input)
	return err
}

func (s *eventService) Create(ctx context.Context, ownerID uuid.UUID, input dto.EventInput) (*entity.Event, error) {
	ev, err := buildEvent(input)
	if err != nil {
		return nil, err
	}
	ev.OwnerID = ownerID

	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}

	return s.Get(ctx, ev.ID)
}

// buildEvent checks input and returns an unowned, upcoming event.
func buildEvent(input dto.EventInput) (*entity.Event, error) {
	title, err := requiredText("title", input.Title)
	if err != nil {
		return nil, err
	}
	description, err := requiredText("description", input.Description)
	if err != nil {
		return nil, err
	}
	eventType, err := requiredText("event_type", input.EventType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Date) == "" {
		return nil, fmt.Errorf("date is required: %w", apperror.ErrValidation)
	}
	location, err := requiredText("location", input.Location)
	if err != nil {
		return nil, err
	}

	if !entity.ValidEventType(eventType) {
		return nil, fmt.Errorf("event_type must be one of %s: %w", strings.Join(entity.EventTypes, ", "), apperror.ErrValidation)
	}

	date, err := dto.ParseDate(input.Date, input.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidDate)
	}

	if err := validateCapacity(input.MaxParticipants); err != nil {
		return nil, err
	}

	return &entity.Event{
		Title:               title,
		Description:         description,
		EventType:           eventType,
		Date:                date,
		Location:            location,
		MaxParticipants:     input.MaxParticipants,
		CurrentParticipants: 0,
		Status:              entity.EventStatusUpcoming,
	}, nil
}

func (s *eventService) Get(ctx context.Context, id uint) (*entity.Event, error) {
	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return ev, nil
}

func (s *eventService) AuthorizeOwner(ev *entity.Event, principalID uuid.UUID) error {
	if ev.OwnerID != principalID {
		return fmt.Errorf("event belongs to another account: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *eventService) GetOwned(ctx context.Context, id uint, principalID uuid.UUID) (*entity.Event, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ev, principalID); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update applies the supplied fields to a copy of ev and persists it.
// ev itself is never modified.
func (s *eventService) Update(ctx context.Context, ev *entity.Event, patch dto.EventPatch) (*entity.Event, error) {
	updated := *ev

	if patch.Title != nil {
		title, err := requiredText("title", *patch.Title)
		if err != nil {
			return nil, err
		}
		updated.Title = title
	}
	if patch.Description != nil {
		description, err := requiredText("description", *patch.Description)
		if err != nil {
			return nil, err
		}
		updated.Description = description
	}
	if patch.EventType != nil {
		eventType := strings.TrimSpace(*patch.EventType)
		if !entity.ValidEventType(eventType) {
			return nil, fmt.Errorf("event_type must be one of %s: %w", strings.Join(entity.EventTypes, ", "), apperror.ErrValidation)
		}
		updated.EventType = eventType
	}
	if patch.Date != nil {
		date, err := dto.ParseDate(*patch.Date, patch.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidDate)
		}
		updated.Date = date
	}
	if patch.Location != nil {
		location, err := requiredText("location", *patch.Location)
		if err != nil {
			return nil, err
		}
		updated.Location = location
	}
	if patch.MaxParticipants.Set {
		if err := validateCapacity(patch.MaxParticipants.Value); err != nil {
			return nil, err
		}
		updated.MaxParticipants = patch.MaxParticipants.Value
	}
	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		if !entity.ValidEventStatus(status) {
			return nil, fmt.Errorf("status must be one of %s: %w", strings.Join(entity.EventStatuses, ", "), apperror.ErrValidation)
		}
		updated.Status = status
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *eventService) UpdateOwned(ctx context.Context, id uint, principalID uuid.UUID, patch dto.EventPatch) (*entity.Event, error) {
	ev, err := s.GetOwned(ctx, id, principalID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, ev, patch)
}

func (s *eventService) Delete(ctx context.Context, id uint) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("event not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *eventService) DeleteOwned(ctx context.Context, id uint, principalID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, id, principalID); err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

func requiredText(field, value string) (string, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "", fmt.Errorf("%s is required: %w", field, apperror.ErrValidation)
	}
	return cleaned, nil
}

func validateCapacity(limit *int) error {
	if limit != nil && *limit <= 0 {
		return fmt.Errorf("max_participants must be a positive integer: %w", apperror.ErrValidation)
	}
	return nil
}
