package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEvent       = "event"
	EventTypeCompetition = "competition"
	EventTypeProgram     = "program"
)

// Status is an open enumeration: any value may be assigned from any other.
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusOngoing   = "ongoing"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

var (
	EventTypes    = []string{EventTypeEvent, EventTypeCompetition, EventTypeProgram}
	EventStatuses = []string{EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled}
)

type Event struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Title               string    `gorm:"size:200;not null" json:"title"`
	Description         string    `gorm:"type:text;not null" json:"description"`
	EventType           string    `gorm:"size:50;not null" json:"event_type"`
	Date                time.Time `gorm:"not null;index" json:"date"`
	Location            string    `gorm:"size:200;not null" json:"location"`
	MaxParticipants     *int      `json:"max_participants"`
	CurrentParticipants int       `gorm:"not null;default:0" json:"current_participants"`
	Status              string    `gorm:"size:20;not null;default:upcoming" json:"status"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	OwnerID             uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner               *Account  `gorm:"foreignKey:OwnerID" json:"-"`
}

func ValidEventType(v string) bool {
	return contains(EventTypes, v)
}

func ValidEventStatus(v string) bool {
	return contains(EventStatuses, v)
}

// OwnerName returns the owner's username when the relation is loaded.
func (e *Event) OwnerName() *string {
	if e.Owner == nil {
		return nil
	}
	name := e.Owner.Username
	return &name
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
