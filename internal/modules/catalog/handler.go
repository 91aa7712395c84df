package catalog

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

/* ---------- FACILITY HANDLERS ---------- */

// ListFacilities handles GET /api/v1/locations/:id/facilities?page=1&limit=20
func (h *Handler) ListFacilities(c *gin.Context) {
	locationID, ok := parseID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	page, _ := strconv.Atoi(c.Query("page"))

	out, err := h.service.ListFacilities(c.Request.Context(), locationID, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// GetFacility handles GET /api/v1/facilities/:id
func (h *Handler) GetFacility(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	f, err := h.service.GetFacility(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"facility": f})
}

// CreateFacility handles POST /api/v1/locations/:id/facilities
func (h *Handler) CreateFacility(c *gin.Context) {
	locationID, ok := parseID(c)
	if !ok {
		return
	}
	var req CreateFacilityRequest
	if !bind(c, &req) {
		return
	}

	f, err := h.service.CreateFacility(c.Request.Context(), middleware.Actor(c), locationID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"facility": f})
}

/* ---------- LOCATION HANDLERS ---------- */

func (h *Handler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if !bind(c, &req) {
		return
	}

	l, err := h.service.CreateLocation(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"location": l})
}

/* ---------- WORKING HOURS HANDLERS ---------- */

func (h *Handler) GetWorkingHours(c *gin.Context) {
	orgID, ok := parseID(c)
	if !ok {
		return
	}
	wh, err := h.service.GetWorkingHours(c.Request.Context(), orgID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"working_hours": wh})
}

func (h *Handler) UpdateWorkingHours(c *gin.Context) {
	orgID, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateWorkingHoursRequest
	if !bind(c, &req) {
		return
	}

	wh, err := h.service.UpdateWorkingHours(c.Request.Context(), middleware.Actor(c), orgID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"working_hours": wh})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return false
	}
	return true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrFacilityNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
	case errors.Is(err, ErrLocationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
	case errors.Is(err, ErrOrganizationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Organization not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
