package models

import "time"

type ClassType string

const (
	ClassIndividual ClassType = "individual"
	ClassGroup      ClassType = "group"
)

type ClassStatus string

const (
	ClassDraft     ClassStatus = "draft"
	ClassActive    ClassStatus = "active"
	ClassCompleted ClassStatus = "completed"
	ClassCancelled ClassStatus = "cancelled"
	ClassSuspended ClassStatus = "suspended"
)

type RateType string

const (
	RatePerClass   RateType = "per_class"
	RatePerStudent RateType = "per_student"
	RatePerSession RateType = "per_session"
)

type CommissionType string

const (
	CommissionFixed      CommissionType = "fixed"
	CommissionPercentage CommissionType = "percentage"
)

// Class — учебное предложение: курс + преподаватель + параметры оплаты.
// Для individual всегда capacity = 1 (проверяется и в валидации, и в БД).
type Class struct {
	ID              int64          `db:"id"`
	CourseID        int64          `db:"course_id"`
	TeacherID       int64          `db:"teacher_id"`
	Title           string         `db:"title"`
	DurationMinutes int            `db:"duration_minutes"`
	Type            ClassType      `db:"class_type"`
	Capacity        int            `db:"capacity"`
	TeacherRate     float64        `db:"teacher_rate"`
	RateType        RateType       `db:"rate_type"`
	CommissionType  CommissionType `db:"commission_type"`
	CommissionValue float64        `db:"commission_value"`
	Status          ClassStatus    `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (t ClassType) Valid() bool {
	return t == ClassIndividual || t == ClassGroup
}

func (s ClassStatus) Valid() bool {
	switch s {
	case ClassDraft, ClassActive, ClassCompleted, ClassCancelled, ClassSuspended:
		return true
	}
	return false
}

func (r RateType) Valid() bool {
	return r == RatePerClass || r == RatePerStudent || r == RatePerSession
}

func (c CommissionType) Valid() bool {
	return c == CommissionFixed || c == CommissionPercentage
}

// Validate — проверка инвариантов перед записью.
func (c *Class) Validate() error {
	if c.Title == "" {
		return NewValidationError("title", "пустое название класса")
	}
	if c.DurationMinutes <= 0 {
		return NewValidationError("duration_minutes", "длительность должна быть положительной")
	}
	if !c.Type.Valid() {
		return NewValidationError("class_type", "недопустимый тип класса")
	}
	if !c.RateType.Valid() {
		return NewValidationError("rate_type", "недопустимый тип ставки")
	}
	if !c.CommissionType.Valid() {
		return NewValidationError("commission_type", "недопустимый тип комиссии")
	}
	if c.Type == ClassIndividual && c.Capacity != 1 {
		return NewValidationError("capacity", "индивидуальный класс всегда с capacity = 1")
	}
	if c.Capacity < 1 {
		return NewValidationError("capacity", "вместимость должна быть не меньше 1")
	}
	return nil
}

// Teacher — профиль преподавателя. Без активного профиля расчётные
// листы не формируются.
type Teacher struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}
