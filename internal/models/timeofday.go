package models

import (
	"fmt"
	"time"
)

// TimeOfDay — время начала занятия в рамках суток, без даты и зоны.
// В БД хранится колонкой TIME.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay принимает "15:04" и "15:04:05" (секунды отбрасываем).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
	}
	return TimeOfDay{}, NewValidationError("time", fmt.Sprintf("недопустимое время %q", s))
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute)
}

// Before — порядок внутри суток.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	if t.Hour != o.Hour {
		return t.Hour < o.Hour
	}
	return t.Minute < o.Minute
}

// At — конкретный момент: дата d + время t в зоне loc.
func (t TimeOfDay) At(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, loc)
}
