package classes

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

// CheckConflicts handles POST /classes/conflicts
func (h *Handler) CheckConflicts(c *gin.Context) {
	var req CheckConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	out, err := h.service.CheckConflicts(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// CreateClass handles POST /classes
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}

	out, err := h.service.CreateClass(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

func (h *Handler) GetClass(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return
	}
	class, err := h.service.GetClass(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

func (h *Handler) fail(c *gin.Context, err error) {
	var (
		conflict *ConflictError
		cancel   *CancellationError
	)
	switch {
	case errors.As(err, &conflict):
		code, message := "BOOKING_CONFLICT", "Class sessions overlap existing bookings; confirm their cancellation to continue"
		if errors.Is(conflict, ErrClassConflict) {
			code, message = "CLASS_CONFLICT", "Class sessions overlap other classes in this facility"
		} else if conflict.Mismatch {
			message = "cancel_booking_ids must list exactly the conflicting bookings"
		}
		response.ErrorWithDetails(c, http.StatusConflict, code, message, gin.H{
			"conflicts":       conflict.Report.Bookings,
			"class_conflicts": conflict.Report.Classes,
		})
	case errors.As(err, &cancel):
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Booking could not be cancelled; nothing was saved", gin.H{
			"booking_id": cancel.BookingID,
		})
	case errors.Is(err, ErrPersistence):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Class could not be saved; nothing was changed")
	case errors.Is(err, ErrTooManySessions):
		response.Error(c, http.StatusUnprocessableEntity, "TOO_MANY_SESSIONS", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNoSessions):
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrFacilityNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
	case errors.Is(err, ErrLocationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Class not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process class")
	}
}
