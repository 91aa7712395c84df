package catalog

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/locations/:id/facilities", h.ListFacilities)
	rg.GET("/facilities/:id", h.GetFacility)
	rg.GET("/organizations/:id/working-hours", h.GetWorkingHours)
}

// RegisterOwnerRoutes expects rg to be authenticated, owner-only and subscription-gated.
// sameOrg rejects :id values that are not the caller's organization.
func (h *Handler) RegisterOwnerRoutes(rg *gin.RouterGroup, sameOrg gin.HandlerFunc) {
	rg.POST("/locations", h.CreateLocation)
	rg.POST("/locations/:id/facilities", h.CreateFacility)
	rg.PUT("/organizations/:id/working-hours", sameOrg, h.UpdateWorkingHours)
}
