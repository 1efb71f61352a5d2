package repository

import (
	"context"

	"anoa.com/campushub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uint) (*entity.Event, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Event, error)
	FindAll(ctx context.Context) ([]entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*entity.Event, error) {
	var event entity.Event
	if err := r.db.WithContext(ctx).Preload("Owner").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("date DESC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindAll(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("date DESC").
		Find(&events).Error
	return events, err
}

// Update writes the mutable columns, including a cleared max_participants.
func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).
		Model(&entity.Event{ID: event.ID}).
		Updates(map[string]interface{}{
			"title":            event.Title,
			"description":      event.Description,
			"event_type":       event.EventType,
			"date":             event.Date,
			"location":         event.Location,
			"max_participants": event.MaxParticipants,
			"status":           event.Status,
		}).Error
}

// Delete reports the number of removed rows so callers can detect a lost race.
func (r *eventRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&entity.Event{}, id)
	return result.RowsAffected, result.Error
}
