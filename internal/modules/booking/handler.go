package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slotwise/internal/middleware"
	"slotwise/internal/pkg/response"
	"slotwise/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetAvailability handles GET /facilities/:id/availability?date=YYYY-MM-DD&duration=60
func (h *Handler) GetAvailability(c *gin.Context) {
	facilityID, ok := parseID(c)
	if !ok {
		return
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "duration must be a number of minutes")
			return
		}
		duration = d
	}

	out, err := h.service.GetAvailability(c.Request.Context(), facilityID, c.Query("date"), duration)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// GetSchedule handles GET /facilities/:id/bookings?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetSchedule(c *gin.Context) {
	facilityID, ok := parseID(c)
	if !ok {
		return
	}
	out, err := h.service.GetSchedule(c.Request.Context(), middleware.Actor(c), facilityID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CompleteBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.CompleteBooking(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
			return
		}
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), middleware.Actor(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) fail(c *gin.Context, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusConflict, "BOOKING_CONFLICT", "Facility is not available for the selected time", gin.H{
			"conflicts":       conflict.Report.Bookings,
			"class_conflicts": conflict.Report.Classes,
		})
	case errors.Is(err, ErrNotAvailable), errors.Is(err, ErrOverbooking):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Facility is not available for the selected time")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrFacilityNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
