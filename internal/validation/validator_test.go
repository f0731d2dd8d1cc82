package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Date  string `validate:"required,date"`
	Time  string `validate:"required,clock"`
	Phone string `validate:"required,phone"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{Date: "2025-03-10", Time: "09:00", Phone: "+91 98765 43210"}))

	err := v.Struct(sample{Date: "10-03-2025", Time: "9:00", Phone: "12345"})
	errs := v.ValidationErrors(err)
	assert.Len(t, errs, 3)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field()] = e.Tag()
	}
	assert.Equal(t, map[string]string{"Date": "date", "Time": "clock", "Phone": "phone"}, fields)
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("9876543210"))
	assert.True(t, IsPhone("+91-98765-43210"))
	assert.False(t, IsPhone("98765"))
	assert.False(t, IsPhone("phone 9876543210"))
	assert.Equal(t, "919876543210", Digits("+91 (98765) 43210"))
}

func TestValidationErrorsNil(t *testing.T) {
	v := New()
	assert.Nil(t, v.ValidationErrors(nil))
}

type tagged struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty" validate:"omitempty,phone"`
	Note  string `json:"-" validate:"max=3"`
}

func TestErrorsUseJSONNames(t *testing.T) {
	v := New()
	errs := v.ValidationErrors(v.Struct(tagged{Phone: "123", Note: "long"}))

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field()] = e.Tag()
	}
	assert.Equal(t, map[string]string{"name": "required", "phone": "phone", "Note": "max"}, fields)
}

func TestCustomTagsRejectNonStrings(t *testing.T) {
	type wrong struct {
		Day int `validate:"date"`
	}
	errs := New().ValidationErrors(New().Struct(wrong{Day: 20250310}))
	assert.Len(t, errs, 1)
}
