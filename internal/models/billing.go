package models

type BillingType string

const (
	BillingPerSession BillingType = "per_session"
	BillingPerMonth   BillingType = "per_month"
	BillingPerMinute  BillingType = "per_minute"
)

// CourseBilling — биллинговые настройки курса. Приходят от внешнего
// модуля биллинга, здесь не хранятся.
type CourseBilling struct {
	Type             BillingType
	PricePerSession  float64
	PricePerMonth    float64
	SessionsPerMonth int
	PricePerMinute   float64
}

// Enrollment — активная запись ученика на курс; источник — внешний
// модуль зачислений.
type Enrollment struct {
	StudentID    int64
	EnrollmentID int64
}
