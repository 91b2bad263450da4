package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/campusconnect/rsvp-service/internal/dto"
	"github.com/campusconnect/rsvp-service/internal/models"
	"github.com/campusconnect/rsvp-service/internal/repository"
	"github.com/campusconnect/rsvp-service/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the authenticated user's ID, set by the gateway.
// Authentication itself happens upstream.
const HeaderUserID = "X-User-ID"

type RsvpHandler struct {
	svc       service.RsvpService
	eventRepo repository.EventRepository
	rsvpRepo  repository.RsvpRepository
}

func NewRsvpHandler(svc service.RsvpService, eventRepo repository.EventRepository, rsvpRepo repository.RsvpRepository) *RsvpHandler {
	return &RsvpHandler{svc: svc, eventRepo: eventRepo, rsvpRepo: rsvpRepo}
}

func (h *RsvpHandler) RegisterRoutes(e *echo.Echo) {
	events := e.Group("/api/v1/events")
	events.POST("/:id/rsvp", h.CreateRsvp)
	events.DELETE("/:id/rsvp", h.CancelRsvp)
	events.GET("/:id/rsvp", h.GetRsvp)
	events.GET("/:id/rsvps", h.ListRsvps)
	events.GET("/:id/status", h.GetEventStatus)
}

func (h *RsvpHandler) CreateRsvp(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req dto.CreateRsvpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	requested := models.RsvpStatus(req.Status)
	if requested != models.StatusGoing && requested != models.StatusInterested {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be \"going\" or \"interested\"")
	}

	rsvp, err := h.svc.Rsvp(c.Request().Context(), userID, eventID, requested, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrEventNotEligible):
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrEventAlreadyStarted),
			errors.Is(err, service.ErrRsvpWindowClosed),
			errors.Is(err, service.ErrEventFull):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateRsvp):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToRsvpResponse(rsvp))
}

func (h *RsvpHandler) CancelRsvp(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	rsvp, err := h.svc.CancelRsvp(c.Request().Context(), userID, eventID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrRsvpNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToRsvpResponse(rsvp))
}

func (h *RsvpHandler) GetRsvp(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	rsvp, err := h.svc.GetRsvp(c.Request().Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, service.ErrRsvpNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToRsvpResponse(rsvp))
}

func (h *RsvpHandler) ListRsvps(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	var status *models.RsvpStatus
	if s := c.QueryParam("status"); s != "" {
		rs := models.RsvpStatus(s)
		status = &rs
	}

	rsvps, err := h.svc.ListRsvps(c.Request().Context(), eventID, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.RsvpResponse, len(rsvps))
	for i, r := range rsvps {
		resp[i] = dto.ToRsvpResponse(&r)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *RsvpHandler) GetEventStatus(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	event, err := h.eventRepo.FindByID(c.Request().Context(), eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	ctx := c.Request().Context()
	going, _ := h.rsvpRepo.CountByStatus(ctx, event.ID, models.StatusGoing)
	interested, _ := h.rsvpRepo.CountByStatus(ctx, event.ID, models.StatusInterested)
	waitlisted, _ := h.rsvpRepo.CountByStatus(ctx, event.ID, models.StatusWaitlisted)

	resp := dto.EventStatusResponse{
		ID:                event.ID,
		Title:             event.Title,
		Capacity:          event.Capacity,
		RsvpBuffer:        event.RsvpBuffer,
		IsWaitlistEnabled: event.IsWaitlistEnabled,
		RsvpCloseTime:     event.RsvpCloseTime,
		Going:             going,
		Interested:        interested,
		Waitlisted:        waitlisted,
	}
	if max, limited := event.MaxAttendees(); limited {
		left := max - int(going)
		if left < 0 {
			left = 0
		}
		resp.SpotsLeft = &left
	}

	return c.JSON(http.StatusOK, resp)
}

func eventIDParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	return id, nil
}

func callerID(c echo.Context) (string, error) {
	userID := c.Request().Header.Get(HeaderUserID)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	return userID, nil
}
