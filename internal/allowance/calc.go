// Package allowance — расчёт вознаграждения преподавателя за одно
// занятие. Чистая арифметика без обращений к БД.
package allowance

import "github.com/Spok95/tutoring-admin/internal/models"

// Inputs — всё, что нужно для расчёта одного занятия.
type Inputs struct {
	RateType        models.RateType
	TeacherRate     float64
	Capacity        int
	CommissionType  models.CommissionType
	CommissionValue float64
	DurationMinutes int
	// Billing — настройки биллинга курса; nil, если внешний модуль их
	// не нашёл. Нужен только для rate_type = per_session.
	Billing *models.CourseBilling
}

// Calc возвращает сумму вознаграждения и признак fallback.
//
// fallback = true означает, что обязательных биллинговых данных не было
// и сумма по унаследованной политике тихо стала нулём. Это не ошибка —
// вызывающий только логирует такие случаи.
func Calc(in Inputs) (amount float64, fallback bool) {
	switch in.RateType {
	case models.RatePerClass:
		amount = in.TeacherRate
	case models.RatePerStudent:
		seats := in.Capacity
		if seats < 1 {
			seats = 1
		}
		// Платим за проданные места, а не за фактическую явку.
		amount = in.TeacherRate * float64(seats)
	case models.RatePerSession:
		fee, ok := sessionFee(in.Billing, in.DurationMinutes)
		if !ok {
			return 0, true
		}
		switch in.CommissionType {
		case models.CommissionPercentage:
			amount = fee * in.CommissionValue / 100
		case models.CommissionFixed:
			amount = in.CommissionValue
		default:
			return 0, true
		}
	default:
		return 0, true
	}

	if amount < 0 {
		amount = 0
	}
	return amount, false
}

// sessionFee — стоимость одного занятия по настройкам курса.
func sessionFee(b *models.CourseBilling, durationMinutes int) (float64, bool) {
	if b == nil {
		return 0, false
	}
	switch b.Type {
	case models.BillingPerSession:
		return b.PricePerSession, true
	case models.BillingPerMonth:
		n := b.SessionsPerMonth
		if n <= 0 {
			// Унаследованный дефолт: отсутствующее/нулевое значение
			// трактуем как 1, чтобы не делить на ноль.
			n = 1
		}
		return b.PricePerMonth / float64(n), true
	case models.BillingPerMinute:
		return b.PricePerMinute * float64(durationMinutes), true
	default:
		return 0, false
	}
}
