package models_test

import (
	"testing"

	"github.com/Spok95/tutoring-admin/internal/models"
)

func validClass() models.Class {
	return models.Class{
		CourseID:        1,
		TeacherID:       1,
		Title:           "Алгебра 9 класс",
		DurationMinutes: 60,
		Type:            models.ClassGroup,
		Capacity:        6,
		TeacherRate:     50,
		RateType:        models.RatePerStudent,
		CommissionType:  models.CommissionPercentage,
		CommissionValue: 10,
		Status:          models.ClassActive,
	}
}

func TestClassValidate(t *testing.T) {
	c := validClass()
	if err := c.Validate(); err != nil {
		t.Fatalf("корректный класс не прошёл валидацию: %v", err)
	}

	bad := []func(*models.Class){
		func(c *models.Class) { c.Title = "" },
		func(c *models.Class) { c.DurationMinutes = 0 },
		func(c *models.Class) { c.Type = "pair" },
		func(c *models.Class) { c.RateType = "hourly" },
		func(c *models.Class) { c.CommissionType = "tiered" },
		func(c *models.Class) { c.Capacity = 0 },
		func(c *models.Class) { c.Type = models.ClassIndividual; c.Capacity = 5 },
	}
	for i, mutate := range bad {
		c := validClass()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("вариант %d: ожидали ошибку валидации", i)
		}
	}
}
