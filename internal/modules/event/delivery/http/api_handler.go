package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/event/dto"
	event "anoa.com/campushub/internal/modules/event/service"
	"anoa.com/campushub/pkg/apperror"
	commonDto "anoa.com/campushub/pkg/dto"
	"anoa.com/campushub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
)

const (
	msgNoData          = "No data provided"
	msgCreateBadDate   = "Invalid date format. Use ISO format (YYYY-MM-DDTHH:MM:SS)"
	msgUpdateBadDate   = "Invalid date format"
	msgEventDeleted    = "Event deleted successfully"
	msgMissingFieldFmt = "Missing required field: %s"
)

// OwnerResolver picks the account that owns events created without a session.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, userID string) (*entity.Account, error)
}

// EventAPIHandler serves the unauthenticated JSON surface for events.
type EventAPIHandler struct {
	service event.EventService
	owners  OwnerResolver
}

func NewEventAPIHandler(service event.EventService, owners OwnerResolver) *EventAPIHandler {
	return &EventAPIHandler{service: service, owners: owners}
}

func (h *EventAPIHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	out := make([]dto.EventDetail, 0, len(events))
	for i := range events {
		out = append(out, dto.NewEventDetail(&events[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *EventAPIHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if ok := bindEventBody(c, &req); !ok {
		return
	}

	if field := req.MissingField(); field != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(msgMissingFieldFmt, field)})
		return
	}

	if _, err := dto.ParseDate(*req.Date, dto.DateFormatISO); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCreateBadDate})
		return
	}

	input := req.Input()
	if err := h.service.Validate(input); err != nil {
		writeCreateError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := ""
	if req.UserID != nil {
		userID = *req.UserID
	}
	owner, err := h.owners.ResolveOwner(ctx, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ev, err := h.service.Create(ctx, owner.ID, input)
	if err != nil {
		writeCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewEventResponse(ev))
}

func writeCreateError(c *gin.Context, err error) {
	if errors.Is(err, apperror.ErrInvalidDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCreateBadDate})
		return
	}
	response.ResponseError(c, err)
}

// GetEvent answers with the status envelope rather than the flat shape.
func (h *EventAPIHandler) GetEvent(c *gin.Context) {
	envelope := dto.Envelope{
		Endpoint: c.Request.URL.Path,
		Method:   c.Request.Method,
	}

	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		envelope.Status = dto.EnvelopeError
		envelope.Message = fmt.Sprintf("Event with ID %s not found", c.Param("id"))
		c.JSON(http.StatusNotFound, envelope)
		return
	}

	ev, err := h.service.Get(c.Request.Context(), req.ID)
	if err != nil {
		envelope.Status = dto.EnvelopeError
		if errors.Is(err, apperror.ErrNotFound) {
			envelope.Message = fmt.Sprintf("Event with ID %d not found", req.ID)
			c.JSON(http.StatusNotFound, envelope)
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Uint("event_id", req.ID).Msg("failed to retrieve event")
		envelope.Message = fmt.Sprintf("Failed to retrieve event: %v", err)
		c.JSON(http.StatusInternalServerError, envelope)
		return
	}

	detail := dto.NewEventDetail(ev)
	envelope.Status = dto.EnvelopeSuccess
	envelope.Message = fmt.Sprintf("Event %d retrieved successfully", ev.ID)
	envelope.Data = &detail
	c.JSON(http.StatusOK, envelope)
}

func (h *EventAPIHandler) UpdateEvent(c *gin.Context) {
	ev, ok := h.lookup(c)
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if ok := bindEventBody(c, &req); !ok {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), ev, req.Patch())
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgUpdateBadDate})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventResponse(updated))
}

func (h *EventAPIHandler) DeleteEvent(c *gin.Context) {
	ev, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ev.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: msgEventDeleted})
}

func (h *EventAPIHandler) lookup(c *gin.Context) (*entity.Event, bool) {
	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("event not found: %w", apperror.ErrNotFound))
		return nil, false
	}

	ev, err := h.service.Get(c.Request.Context(), req.ID)
	if err != nil {
		response.ResponseError(c, err)
		return nil, false
	}
	return ev, true
}

var emptyBodies = [][]byte{nil, []byte("null"), []byte("{}"), []byte("[]")}

// bindEventBody decodes a JSON object body, answering 400 for empty or
// malformed payloads.
func bindEventBody(c *gin.Context, obj interface{}) bool {
	raw, err := c.GetRawData()
	if err != nil {
		response.ResponseError(c, fmt.Errorf("failed to read request body: %w", apperror.ErrBadRequest))
		return false
	}

	trimmed := bytes.Join(bytes.Fields(raw), nil)
	for _, empty := range emptyBodies {
		if bytes.Equal(trimmed, empty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoData})
			return false
		}
	}

	if err := binding.JSON.BindBody(raw, obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
