package classes

import "github.com/gin-gonic/gin"

// RegisterRoutes expects rg to be authenticated and restricted to staff.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	classes := rg.Group("/classes")
	{
		classes.POST("/conflicts", h.CheckConflicts)
		classes.POST("", h.CreateClass)
		classes.GET("/:id", h.GetClass)
	}
}
