package booking

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/facilities/:id/availability", h.GetAvailability)
}

// RegisterRoutes expects rg to be authenticated. staffOnly guards the status changes that only
// the organization may perform.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, staffOnly gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/cancel", h.CancelBooking)
		bookings.PATCH("/:id/confirm", staffOnly, h.ConfirmBooking)
		bookings.PATCH("/:id/complete", staffOnly, h.CompleteBooking)
	}
	rg.GET("/facilities/:id/bookings", staffOnly, h.GetSchedule)
}
