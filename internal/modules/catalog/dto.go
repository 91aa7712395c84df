package catalog

import "slotwise/internal/domain"

type CreateLocationRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Address  string `json:"address" validate:"max=500"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

type CreateFacilityRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

type WorkingHoursDay struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	OpenTime  string `json:"open_time" validate:"omitempty,clock"`
	CloseTime string `json:"close_time" validate:"omitempty,clock"`
	IsClosed  bool   `json:"is_closed"`
}

type UpdateWorkingHoursRequest struct {
	Hours []WorkingHoursDay `json:"hours" validate:"required,len=7,dive"`
}

type FacilityList struct {
	Facilities []domain.Facility `json:"facilities"`
	Pagination Pagination        `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}
