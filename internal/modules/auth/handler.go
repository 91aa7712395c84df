package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"slotwise/internal/middleware"
	"slotwise/internal/pkg/response"
	"slotwise/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register/customer", h.RegisterCustomer)
		authGroup.POST("/register/organization", h.RegisterOrganization)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/me", h.GetMe)
}

// RegisterCustomer creates a customer account and returns a session token.
// @Summary		Register customer
// @Tags		Auth
// @Param		request	body	RegisterCustomerRequest	true	"email, password, name, phone"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/auth/register/customer [POST]
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	out, err := h.service.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "REGISTRATION_FAILED")
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// RegisterOrganization creates an organization on a trial subscription plus its owner account.
// @Summary		Register organization
// @Tags		Auth
// @Param		request	body	RegisterOrganizationRequest	true	"organization name and owner credentials"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/auth/register/organization [POST]
func (h *Handler) RegisterOrganization(c *gin.Context) {
	var req RegisterOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}

	out, err := h.service.RegisterOrganization(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "REGISTRATION_FAILED")
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// Login exchanges email and password for a token.
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"email and password"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	out, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "LOGIN_FAILED")
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err, "INTERNAL_ERROR")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, fallback, "Request failed")
	}
}
