package schedule_test

import (
	"testing"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
	"github.com/Spok95/tutoring-admin/internal/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tod(h, m int) models.TimeOfDay {
	return models.TimeOfDay{Hour: h, Minute: m}
}

func TestExpand_WeeklyWindow(t *testing.T) {
	var ws models.WeeklySchedule
	ws[time.Monday] = []models.TimeOfDay{tod(9, 0)}
	ws[time.Wednesday] = []models.TimeOfDay{tod(9, 0)}

	occs, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 3, 4), date(2024, 3, 15))
	if err != nil {
		t.Fatal(err)
	}

	want := []time.Time{
		date(2024, 3, 4), date(2024, 3, 6), date(2024, 3, 11), date(2024, 3, 13),
	}
	if len(occs) != len(want) {
		t.Fatalf("ожидали %d занятий, получили %d: %v", len(want), len(occs), occs)
	}
	for i, w := range want {
		if !occs[i].Date.Equal(w) {
			t.Fatalf("occ[%d]: ожидали %s, получили %s", i, w.Format("2006-01-02"), occs[i].Date.Format("2006-01-02"))
		}
		if occs[i].Time != tod(9, 0) {
			t.Fatalf("occ[%d]: ожидали 09:00, получили %s", i, occs[i].Time)
		}
	}
}

func TestExpand_Deterministic(t *testing.T) {
	var ws models.WeeklySchedule
	ws[time.Tuesday] = []models.TimeOfDay{tod(18, 30), tod(10, 0)}

	a, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 3, 1), date(2024, 3, 31))
	if err != nil {
		t.Fatal(err)
	}
	b, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 3, 1), date(2024, 3, 31))
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("повторный запуск дал другой размер: %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("повторный запуск дал другой occ[%d]: %v != %v", i, a[i], b[i])
		}
	}
}

func TestExpand_OrderWithinDay(t *testing.T) {
	var ws models.WeeklySchedule
	// Намеренно не по порядку: сортировка — обязанность Expand.
	ws[time.Friday] = []models.TimeOfDay{tod(18, 0), tod(9, 0), tod(12, 30)}

	occs, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 3, 8), date(2024, 3, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(occs) != 3 {
		t.Fatalf("ожидали 3 занятия, получили %d", len(occs))
	}
	for i := 1; i < len(occs); i++ {
		if !occs[i-1].Time.Before(occs[i].Time) {
			t.Fatalf("времена внутри дня не отсортированы: %s перед %s", occs[i-1].Time, occs[i].Time)
		}
	}
}

func TestExpand_BiWeekly(t *testing.T) {
	var ws models.WeeklySchedule
	ws[time.Monday] = []models.TimeOfDay{tod(10, 0)}

	// Старт в понедельник: берётся каждая чётная неделя от недели старта.
	occs, err := schedule.Expand(ws, models.RecurrenceBiWeekly, date(2024, 3, 4), date(2024, 4, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Time{date(2024, 3, 4), date(2024, 3, 18), date(2024, 4, 1)}
	if len(occs) != len(want) {
		t.Fatalf("ожидали %d занятий, получили %d: %v", len(want), len(occs), occs)
	}
	for i, w := range want {
		if !occs[i].Date.Equal(w) {
			t.Fatalf("occ[%d]: ожидали %s, получили %s", i, w.Format("2006-01-02"), occs[i].Date.Format("2006-01-02"))
		}
	}
}

func TestExpand_BiWeeklyMidweekStart(t *testing.T) {
	var ws models.WeeklySchedule
	ws[time.Monday] = []models.TimeOfDay{tod(10, 0)}

	// Старт в среду: понедельник той же недели уже позади, первое занятие
	// выпадает на чётную неделю через понедельник.
	occs, err := schedule.Expand(ws, models.RecurrenceBiWeekly, date(2024, 3, 6), date(2024, 3, 25))
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Time{date(2024, 3, 18)}
	if len(occs) != len(want) || !occs[0].Date.Equal(want[0]) {
		t.Fatalf("ожидали единственное занятие 2024-03-18, получили %v", occs)
	}
}

func TestExpand_BiWeeklyAcrossDSTShift(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("нет базы часовых поясов:", err)
	}
	var ws models.WeeklySchedule
	ws[time.Monday] = []models.TimeOfDay{tod(10, 0)}

	// 10 марта 2024 в этой зоне — перевод часов вперёд, неделя длиной
	// 167 часов. Чётность недель от этого меняться не должна.
	local := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	occs, err := schedule.Expand(ws, models.RecurrenceBiWeekly, local(2024, 3, 4), local(2024, 3, 25))
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Time{local(2024, 3, 4), local(2024, 3, 18)}
	if len(occs) != len(want) {
		t.Fatalf("ожидали %d занятий, получили %d: %v", len(want), len(occs), occs)
	}
	for i, w := range want {
		if !occs[i].Date.Equal(w) {
			t.Fatalf("occ[%d]: ожидали %s, получили %s", i, w.Format("2006-01-02"), occs[i].Date.Format("2006-01-02"))
		}
	}
}

func TestExpand_EmptyWindow(t *testing.T) {
	var ws models.WeeklySchedule
	ws[time.Sunday] = []models.TimeOfDay{tod(11, 0)}

	// Понедельник–пятница без воскресений: пустой результат, не ошибка.
	occs, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 3, 4), date(2024, 3, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(occs) != 0 {
		t.Fatalf("ожидали пустой список, получили %v", occs)
	}
}

func TestExpand_Rejects(t *testing.T) {
	var ws models.WeeklySchedule
	ws[time.Monday] = []models.TimeOfDay{tod(9, 0)}

	if _, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 3, 15), date(2024, 3, 4)); err == nil {
		t.Fatal("ожидали ошибку: конец раньше начала")
	}
	if _, err := schedule.Expand(ws, models.RecurrenceWeekly, date(2024, 1, 1), date(2026, 1, 1)); err == nil {
		t.Fatal("ожидали ошибку: диапазон длиннее года")
	}
	if _, err := schedule.Expand(ws, models.RecurrencePattern("monthly"), date(2024, 3, 4), date(2024, 3, 15)); err == nil {
		t.Fatal("ожидали ошибку: неизвестный шаблон повторения")
	}
}
