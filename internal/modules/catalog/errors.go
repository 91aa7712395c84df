package catalog

import "errors"

var (
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation error")
	ErrFacilityNotFound     = errors.New("facility not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrOrganizationNotFound = errors.New("organization not found")
)
