package models

import "time"

type RecurrencePattern string

const (
	RecurrenceWeekly   RecurrencePattern = "weekly"
	RecurrenceBiWeekly RecurrencePattern = "bi_weekly"
)

func (p RecurrencePattern) Valid() bool {
	return p == RecurrenceWeekly || p == RecurrenceBiWeekly
}

// WeeklySchedule — фиксированная сетка: 7 дней (индекс time.Weekday,
// воскресенье = 0), на день — упорядоченный список времён начала.
// Строковых имён дней здесь нет намеренно: некорректный день недели
// просто невозможен.
type WeeklySchedule [7][]TimeOfDay

// IsEmpty — true, если ни в одном дне нет времён.
func (ws WeeklySchedule) IsEmpty() bool {
	for _, times := range ws {
		if len(times) > 0 {
			return false
		}
	}
	return true
}

// Timetable — недельное расписание, ровно одно на класс.
// end_date = nil означает открытое расписание: сессии порождаются
// вперёд на ограниченный горизонт.
type Timetable struct {
	ID        int64             `db:"id"`
	ClassID   int64             `db:"class_id"`
	Schedule  WeeklySchedule    `db:"-"`
	Pattern   RecurrencePattern `db:"recurrence_pattern"`
	StartDate time.Time         `db:"start_date"`
	EndDate   *time.Time        `db:"end_date"`
	IsActive  bool              `db:"is_active"`
	CreatedAt time.Time         `db:"created_at"`
}

func (t *Timetable) Validate() error {
	if !t.Pattern.Valid() {
		return NewValidationError("recurrence_pattern", "недопустимый шаблон повторения")
	}
	if t.Schedule.IsEmpty() {
		return NewValidationError("weekly_schedule", "расписание не содержит ни одного времени")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return NewValidationError("end_date", "дата окончания раньше даты начала")
	}
	return nil
}
