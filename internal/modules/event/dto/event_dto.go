package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/pkg/apperror"
	commonDto "anoa.com/campushub/pkg/dto"
)

// DateFormat selects how an event date string is parsed.
type DateFormat int

const (
	// DateFormatISO accepts ISO-8601 timestamps, with or without an offset.
	DateFormatISO DateFormat = iota
	// DateFormatForm is the value of an HTML datetime-local input.
	DateFormatForm
)

const DateLayoutForm = "2006-01-02T15:04"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	DateLayoutForm,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses value according to format. Timestamps carrying an offset
// are normalized to UTC; naive timestamps are taken as UTC.
func ParseDate(value string, format DateFormat) (time.Time, error) {
	value = strings.TrimSpace(value)
	if format == DateFormatForm {
		return time.ParseInLocation(DateLayoutForm, value, time.UTC)
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as an ISO-8601 date", value)
}

// EventInput carries the fields of a new event.
type EventInput struct {
	Title           string
	Description     string
	EventType       string
	Date            string
	DateFormat      DateFormat
	Location        string
	MaxParticipants *int
}

// EventPatch carries the fields to change on an event; nil fields are left as is.
type EventPatch struct {
	Title           *string
	Description     *string
	EventType       *string
	Date            *string
	DateFormat      DateFormat
	Location        *string
	MaxParticipants OptionalInt
	Status          *string
}

// OptionalInt tells an absent JSON field apart from an explicit null.
type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("max_participants must be an integer")
	}
	o.Value = &n
	return nil
}

// EventForm is the create/edit form of the web surface.
type EventForm struct {
	Title           string `form:"title"`
	Description     string `form:"description"`
	EventType       string `form:"event_type"`
	Date            string `form:"date"`
	Location        string `form:"location"`
	MaxParticipants string `form:"max_participants"`
	Status          string `form:"status"`
}

func (f EventForm) maxParticipants() (*int, error) {
	raw := strings.TrimSpace(f.MaxParticipants)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("max participants must be a whole number: %w", apperror.ErrValidation)
	}
	return &n, nil
}

func (f EventForm) Input() (EventInput, error) {
	limit, err := f.maxParticipants()
	if err != nil {
		return EventInput{}, err
	}
	return EventInput{
		Title:           f.Title,
		Description:     f.Description,
		EventType:       f.EventType,
		Date:            f.Date,
		DateFormat:      DateFormatForm,
		Location:        f.Location,
		MaxParticipants: limit,
	}, nil
}

// Patch resubmits every form field; an empty max participants clears it.
func (f EventForm) Patch() (EventPatch, error) {
	limit, err := f.maxParticipants()
	if err != nil {
		return EventPatch{}, err
	}
	patch := EventPatch{
		Title:           &f.Title,
		Description:     &f.Description,
		EventType:       &f.EventType,
		Date:            &f.Date,
		DateFormat:      DateFormatForm,
		Location:        &f.Location,
		MaxParticipants: OptionalInt{Set: true, Value: limit},
	}
	if strings.TrimSpace(f.Status) != "" {
		patch.Status = &f.Status
	}
	return patch, nil
}

// CreateEventRequest is the public API body for POST /api/events.
type CreateEventRequest struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	EventType       *string     `json:"event_type"`
	Date            *string     `json:"date"`
	Location        *string     `json:"location"`
	MaxParticipants OptionalInt `json:"max_participants"`
	UserID          *string     `json:"user_id"`
}

// MissingField reports the first required field absent from the body.
func (r CreateEventRequest) MissingField() string {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", r.Title},
		{"description", r.Description},
		{"event_type", r.EventType},
		{"date", r.Date},
		{"location", r.Location},
	}
	for _, f := range fields {
		if f.value == nil {
			return f.name
		}
	}
	return ""
}

func (r CreateEventRequest) Input() EventInput {
	return EventInput{
		Title:           deref(r.Title),
		Description:     deref(r.Description),
		EventType:       deref(r.EventType),
		Date:            deref(r.Date),
		DateFormat:      DateFormatISO,
		Location:        deref(r.Location),
		MaxParticipants: r.MaxParticipants.Value,
	}
}

// UpdateEventRequest is the public API body for PUT /api/events/:id.
type UpdateEventRequest struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	EventType       *string     `json:"event_type"`
	Date            *string     `json:"date"`
	Location        *string     `json:"location"`
	MaxParticipants OptionalInt `json:"max_participants"`
	Status          *string     `json:"status"`
}

func (r UpdateEventRequest) Patch() EventPatch {
	return EventPatch{
		Title:           r.Title,
		Description:     r.Description,
		EventType:       r.EventType,
		Date:            r.Date,
		DateFormat:      DateFormatISO,
		Location:        r.Location,
		MaxParticipants: r.MaxParticipants,
		Status:          r.Status,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// EventResponse is the flat shape returned by create and update.
type EventResponse struct {
	ID                  uint    `json:"id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	EventType           string  `json:"event_type"`
	Date                *string `json:"date"`
	Location            string  `json:"location"`
	MaxParticipants     *int    `json:"max_participants"`
	CurrentParticipants int     `json:"current_participants"`
	Status              string  `json:"status"`
	CreatedAt           *string `json:"created_at"`
	Creator             *string `json:"creator"`
}

func NewEventResponse(ev *entity.Event) EventResponse {
	return EventResponse{
		ID:                  ev.ID,
		Title:               ev.Title,
		Description:         ev.Description,
		EventType:           ev.EventType,
		Date:                commonDto.Timestamp(ev.Date),
		Location:            ev.Location,
		MaxParticipants:     ev.MaxParticipants,
		CurrentParticipants: ev.CurrentParticipants,
		Status:              ev.Status,
		CreatedAt:           commonDto.Timestamp(ev.CreatedAt),
		Creator:             ev.OwnerName(),
	}
}

// EventDetail is the shape of the public event list and the enveloped fetch.
type EventDetail struct {
	EventID             uint    `json:"event_id"`
	EventTitle          string  `json:"event_title"`
	EventDescription    string  `json:"event_description"`
	EventType           string  `json:"event_type"`
	EventDate           *string `json:"event_date"`
	EventLocation       string  `json:"event_location"`
	MaxParticipants     *int    `json:"max_participants"`
	CurrentParticipants int     `json:"current_participants"`
	EventStatus         string  `json:"event_status"`
	CreatedAt           *string `json:"created_at"`
	CreatedBy           *string `json:"created_by"`
	CreatorID           string  `json:"creator_id"`
}

func NewEventDetail(ev *entity.Event) EventDetail {
	return EventDetail{
		EventID:             ev.ID,
		EventTitle:          ev.Title,
		EventDescription:    ev.Description,
		EventType:           ev.EventType,
		EventDate:           commonDto.Timestamp(ev.Date),
		EventLocation:       ev.Location,
		MaxParticipants:     ev.MaxParticipants,
		CurrentParticipants: ev.CurrentParticipants,
		EventStatus:         ev.Status,
		CreatedAt:           commonDto.Timestamp(ev.CreatedAt),
		CreatedBy:           ev.OwnerName(),
		CreatorID:           ev.OwnerID.String(),
	}
}

// Envelope wraps the single event fetch.
type Envelope struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Data     *EventDetail `json:"data,omitempty"`
	Endpoint string       `json:"endpoint"`
	Method   string       `json:"method"`
}

const (
	EnvelopeSuccess = "success"
	EnvelopeError   = "error"
)
