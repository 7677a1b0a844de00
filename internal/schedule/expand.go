// Package schedule — чистое разворачивание недельного расписания в
// конкретные (дата, время) занятий. Без побочных эффектов: записью в БД
// занимается сервисный слой.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
)

// maxExpandDays ограничивает один проход генерации, чтобы ошибка в датах
// не породила годы занятий за раз.
const maxExpandDays = 366

// Occurrence — один будущий слот занятия.
type Occurrence struct {
	Date time.Time // полночь локальной даты
	Time models.TimeOfDay
}

// Expand разворачивает недельное расписание в упорядоченный список
// (дата, время) на отрезке [start, end] включительно. Результат
// детерминирован и устойчив к повторному запуску: один и тот же вход
// всегда даёт один и тот же список, дедупликация при вставке — на
// стороне БД.
//
// bi_weekly: занятия только в чётных неделях относительно недели
// start (неделя считается с понедельника).
func Expand(ws models.WeeklySchedule, pattern models.RecurrencePattern, start, end time.Time) ([]Occurrence, error) {
	if !pattern.Valid() {
		return nil, models.NewValidationError("recurrence_pattern", "недопустимый шаблон повторения")
	}
	start = truncateDay(start)
	end = truncateDay(end)
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	days := daysBetween(start, end) + 1

	// Порядок (дата, время) — контракт для календарных выборок,
	// поэтому внутри дня времена сортируем сами, не полагаясь на ввод.
	var sorted models.WeeklySchedule
	for wd, times := range ws {
		cp := append([]models.TimeOfDay(nil), times...)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Before(cp[j]) })
		sorted[wd] = cp
	}

	base := mondayOf(start)
	out := make([]Occurrence, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if pattern == models.RecurrenceBiWeekly {
			if weeksBetween(base, d)%2 != 0 {
				continue
			}
		}
		for _, t := range sorted[d.Weekday()] {
			out = append(out, Occurrence{Date: d, Time: t})
		}
	}
	return out, nil
}

// CheckRange проверяет окно [start, end] по тем же правилам, что и
// Expand. Сервисный слой зовёт её до записи расписания в БД: ошибка
// валидации не должна оставлять после себя частичного состояния.
func CheckRange(start, end time.Time) error {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return models.NewValidationError("end_date", "дата окончания раньше даты начала")
	}
	if days := daysBetween(start, end) + 1; days > maxExpandDays {
		return models.NewValidationError("end_date",
			fmt.Sprintf("слишком длинный диапазон: %d дней (максимум %d)", days, maxExpandDays))
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOf — понедельник недели, в которой лежит t.
func mondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return truncateDay(t).AddDate(0, 0, -(wd - 1))
}

// daysBetween считает разницу в календарных днях. Обе даты приводятся к
// полуночи UTC: разность стенных часов в зоне с переводом времени даёт
// день длиной 23 или 25 часов, и целочисленное деление теряет день.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

func weeksBetween(base, d time.Time) int {
	return daysBetween(base, d) / 7
}
