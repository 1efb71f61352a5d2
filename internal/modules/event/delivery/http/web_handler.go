package handler

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/event/dto"
	event "anoa.com/campushub/internal/modules/event/service"
	"anoa.com/campushub/internal/web"
	"anoa.com/campushub/pkg/apperror"
	commonDto "anoa.com/campushub/pkg/dto"
	"anoa.com/campushub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventWebHandler serves the session-gated event pages. Every route is
// mounted behind SessionGate.RequirePrincipal.
type EventWebHandler struct {
	service event.EventService
}

func NewEventWebHandler(service event.EventService) *EventWebHandler {
	return &EventWebHandler{service: service}
}

func (h *EventWebHandler) ListEvents(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	events, err := h.service.ListForOwner(c.Request.Context(), principal.ID)
	if err != nil {
		h.fail(c, err, "/")
		return
	}

	c.HTML(http.StatusOK, "events.html", web.Page(c, gin.H{
		"Title":  "My events",
		"Events": events,
	}))
}

func (h *EventWebHandler) ShowCreate(c *gin.Context) {
	c.HTML(http.StatusOK, "event_form.html", web.Page(c, gin.H{
		"Title":      "Create event",
		"Action":     "/events/create",
		"EventTypes": entity.EventTypes,
	}))
}

func (h *EventWebHandler) CreateEvent(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form dto.EventForm
	if err := c.ShouldBind(&form); err != nil {
		web.Redirect(c, "/events/create", web.FlashError, err.Error())
		return
	}

	input, err := form.Input()
	if err != nil {
		web.Redirect(c, "/events/create", web.FlashError, err.Error())
		return
	}

	if _, err := h.service.Create(c.Request.Context(), principal.ID, input); err != nil {
		h.fail(c, err, "/events/create")
		return
	}

	web.Redirect(c, "/events", web.FlashSuccess, "Event created successfully!")
}

func (h *EventWebHandler) ViewEvent(c *gin.Context) {
	ev, ok := h.owned(c, "view")
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "event_detail.html", web.Page(c, gin.H{
		"Title": ev.Title,
		"Event": ev,
	}))
}

func (h *EventWebHandler) ShowEdit(c *gin.Context) {
	ev, ok := h.owned(c, "edit")
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "event_form.html", web.Page(c, gin.H{
		"Title":         "Edit event",
		"Action":        fmt.Sprintf("/events/%d/edit", ev.ID),
		"Event":         ev,
		"EventTypes":    entity.EventTypes,
		"EventStatuses": entity.EventStatuses,
	}))
}

func (h *EventWebHandler) UpdateEvent(c *gin.Context) {
	ev, ok := h.owned(c, "edit")
	if !ok {
		return
	}
	editPath := fmt.Sprintf("/events/%d/edit", ev.ID)

	var form dto.EventForm
	if err := c.ShouldBind(&form); err != nil {
		web.Redirect(c, editPath, web.FlashError, err.Error())
		return
	}

	patch, err := form.Patch()
	if err != nil {
		web.Redirect(c, editPath, web.FlashError, err.Error())
		return
	}

	if _, err := h.service.Update(c.Request.Context(), ev, patch); err != nil {
		h.fail(c, err, editPath)
		return
	}

	web.Redirect(c, fmt.Sprintf("/events/%d", ev.ID), web.FlashSuccess, "Event updated successfully!")
}

func (h *EventWebHandler) DeleteEvent(c *gin.Context) {
	ev, ok := h.owned(c, "delete")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ev.ID); err != nil {
		h.fail(c, err, "/events")
		return
	}

	web.Redirect(c, "/events", web.FlashSuccess, "Event deleted successfully!")
}

// owned loads the event named in the path and checks the principal owns it,
// redirecting with a notice otherwise.
func (h *EventWebHandler) owned(c *gin.Context, action string) (*entity.Event, bool) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return nil, false
	}

	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		web.Redirect(c, "/events", web.FlashError, "Event not found!")
		return nil, false
	}

	ev, err := h.service.GetOwned(c.Request.Context(), req.ID, principal.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			web.Redirect(c, "/events", web.FlashError, fmt.Sprintf("You can only %s your own events!", action))
			return nil, false
		}
		h.fail(c, err, "/events")
		return nil, false
	}
	return ev, true
}

func (h *EventWebHandler) fail(c *gin.Context, err error, back string) {
	switch {
	case errors.Is(err, apperror.ErrInvalidDate):
		web.Redirect(c, back, web.FlashError, "Invalid date format!")
	case errors.Is(err, apperror.ErrNotFound):
		web.Redirect(c, "/events", web.FlashError, "Event not found!")
	case errors.Is(err, apperror.ErrValidation):
		web.Redirect(c, back, web.FlashError, err.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("event request failed")
		web.Redirect(c, back, web.FlashError, "Something went wrong, please try again.")
	}
}
