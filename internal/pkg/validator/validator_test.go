package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name     string   `json:"name" validate:"required"`
	Start    string   `json:"start_time" validate:"required,clock"`
	SkipDays []string `json:"skip_days" validate:"dive,weekday"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Name: "Yoga", Start: "18:30", SkipDays: []string{"Sunday"}}))

	errs := Validate(sample{Start: "25:00", SkipDays: []string{"someday"}})
	assert.Equal(t, "required", errs["name"])
	assert.Equal(t, "clock", errs["start_time"])
	assert.Equal(t, "weekday", errs["skip_days[0]"])
}
