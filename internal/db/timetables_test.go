//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/models"
	"github.com/Spok95/tutoring-admin/internal/testutil/testdb"
)

func TestTimetable_RoundTrip(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	teacherID := mustSeedTeacher(t, h.DB, "Юлия")
	classID := mustSeedClass(t, h.DB, teacherID, models.RatePerClass, 300)

	var ws models.WeeklySchedule
	ws[time.Monday] = []models.TimeOfDay{{Hour: 9}, {Hour: 18, Minute: 30}}
	ws[time.Wednesday] = []models.TimeOfDay{{Hour: 9}}

	id, err := db.CreateTimetable(ctx, h.DB, models.Timetable{
		ClassID:   classID,
		Schedule:  ws,
		Pattern:   models.RecurrenceWeekly,
		StartDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := db.GetTimetable(ctx, h.DB, id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Pattern != models.RecurrenceWeekly || !got.IsActive {
		t.Fatalf("расписание прочиталось неверно: %+v", got)
	}
	if len(got.Schedule[time.Monday]) != 2 || len(got.Schedule[time.Wednesday]) != 1 {
		t.Fatalf("слоты прочитались неверно: %+v", got.Schedule)
	}
	if got.Schedule[time.Monday][1] != (models.TimeOfDay{Hour: 18, Minute: 30}) {
		t.Fatalf("время слота искажено: %+v", got.Schedule[time.Monday])
	}

	// Замена сетки: старые слоты уходят целиком.
	var next models.WeeklySchedule
	next[time.Friday] = []models.TimeOfDay{{Hour: 12}}
	if err := db.ReplaceSlots(ctx, h.DB, id, next); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetTimetable(ctx, h.DB, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Schedule[time.Monday]) != 0 || len(got.Schedule[time.Friday]) != 1 {
		t.Fatalf("после замены ожидали только пятницу: %+v", got.Schedule)
	}

	if err := db.SetTimetableActive(ctx, h.DB, id, false); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetTimetable(ctx, h.DB, id)
	if got.IsActive {
		t.Fatal("расписание должно стать неактивным")
	}

	// Деактивация несуществующего — ErrNotFound.
	if err := db.SetTimetableActive(ctx, h.DB, 99999, false); err == nil {
		t.Fatal("ожидали ошибку для несуществующего расписания")
	}
}
