package feed

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to authenticate with middleware.JWTAuthWithQuery.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws/facilities/:id", h.Watch)
}
