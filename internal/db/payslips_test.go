//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/models"
	"github.com/Spok95/tutoring-admin/internal/testutil/testdb"
)

// mustCompletedSession — занятие, доведённое до completed с заданной
// суммой; verified управляет допуском к выплате.
func mustCompletedSession(t *testing.T, dbx *sql.DB, classID, teacherID int64, date time.Time, hour int, amount float64, verified bool) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := db.CreateSingleSession(ctx, dbx, classID, date, models.TimeOfDay{Hour: hour}, 60)
	if err != nil {
		t.Fatal(err)
	}
	if won, err := db.StartSession(ctx, dbx, id, teacherID); err != nil || !won {
		t.Fatalf("start: won=%v err=%v", won, err)
	}
	if won, err := db.CompleteSession(ctx, dbx, id, amount); err != nil || !won {
		t.Fatalf("complete: won=%v err=%v", won, err)
	}
	if verified {
		if won, err := db.VerifySession(ctx, dbx, id, 1, "admin"); err != nil || !won {
			t.Fatalf("verify: won=%v err=%v", won, err)
		}
	}
	return id
}

func TestInsertPayslipFromEligible(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	teacherID := mustSeedTeacher(t, h.DB, "Жанна")
	classID := mustSeedClass(t, h.DB, teacherID, models.RatePerClass, 300)

	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	mustCompletedSession(t, h.DB, classID, teacherID, march(4), 9, 300, true)
	mustCompletedSession(t, h.DB, classID, teacherID, march(6), 9, 300, true)
	// Неверифицированное и апрельское занятия в лист не попадают.
	mustCompletedSession(t, h.DB, classID, teacherID, march(11), 9, 300, false)
	mustCompletedSession(t, h.DB, classID, teacherID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 9, 300, true)

	p, err := db.InsertPayslipFromEligible(ctx, h.DB, teacherID, 2024, time.March, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("лист не создан")
	}
	if p.TotalSessions != 2 || p.TotalAmount != 600 {
		t.Fatalf("ожидали 2 занятия на 600, получили %d на %v", p.TotalSessions, p.TotalAmount)
	}
	if p.Status != models.PayslipDraft {
		t.Fatalf("новый лист должен быть draft, получили %s", p.Status)
	}

	// Повторная генерация за тот же месяц — дубль, первый лист не меняется.
	if _, err := db.InsertPayslipFromEligible(ctx, h.DB, teacherID, 2024, time.March, 2); !models.IsDuplicate(err) {
		t.Fatalf("ожидали DuplicateError, получили %v", err)
	}
	first, err := db.GetPayslipForMonth(ctx, h.DB, teacherID, 2024, time.March)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != p.ID || first.TotalSessions != 2 || first.TotalAmount != 600 || first.GeneratedBy != 1 {
		t.Fatalf("первый лист изменился: %+v", first)
	}
}

func TestInsertPayslipFromEligible_EmptyMonth(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	teacherID := mustSeedTeacher(t, h.DB, "Зоя")

	p, err := db.InsertPayslipFromEligible(ctx, h.DB, teacherID, 2024, time.March, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("пустой месяц не должен давать лист: %+v", p)
	}
}

func TestPayslip_SubstituteAttribution(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	owner := mustSeedTeacher(t, h.DB, "Ирина")
	sub := mustSeedTeacher(t, h.DB, "Кирилл")
	classID := mustSeedClass(t, h.DB, owner, models.RatePerClass, 300)

	sessionID, err := db.CreateSingleSession(ctx, h.DB, classID,
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), models.TimeOfDay{Hour: 9}, 60)
	if err != nil {
		t.Fatal(err)
	}
	if won, _ := db.AssignSubstitute(ctx, h.DB, sessionID, &sub); !won {
		t.Fatal("подмена не прошла")
	}
	if won, _ := db.StartSession(ctx, h.DB, sessionID, sub); !won {
		t.Fatal("start не прошёл")
	}
	if won, _ := db.CompleteSession(ctx, h.DB, sessionID, 300); !won {
		t.Fatal("complete не прошёл")
	}
	if won, _ := db.VerifySession(ctx, h.DB, sessionID, 1, "admin"); !won {
		t.Fatal("verify не прошёл")
	}

	// Занятие с подменой идёт подменному, не владельцу класса.
	count, total, err := db.EligibleSummary(ctx, h.DB, sub, 2024, time.March)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 || total != 300 {
		t.Fatalf("подменному ожидали 1 занятие на 300, получили %d на %v", count, total)
	}
	count, _, err = db.EligibleSummary(ctx, h.DB, owner, 2024, time.March)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("владельцу класса занятие с подменой не начисляется, получили %d", count)
	}
}

func TestPayslipStatus_Lifecycle(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	teacherID := mustSeedTeacher(t, h.DB, "Лев")
	classID := mustSeedClass(t, h.DB, teacherID, models.RatePerClass, 300)
	mustCompletedSession(t, h.DB, classID, teacherID, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 9, 300, true)

	p, err := db.InsertPayslipFromEligible(ctx, h.DB, teacherID, 2024, time.March, 1)
	if err != nil || p == nil {
		t.Fatalf("лист не создан: %v", err)
	}

	// paid возможен только из finalized.
	if won, _ := db.SetPayslipStatus(ctx, h.DB, p.ID, models.PayslipFinalized, models.PayslipPaid); won {
		t.Fatal("draft → paid не должен проходить")
	}
	if won, _ := db.SetPayslipStatus(ctx, h.DB, p.ID, models.PayslipDraft, models.PayslipFinalized); !won {
		t.Fatal("draft → finalized не прошёл")
	}
	// Не-черновик удалить нельзя.
	if won, _ := db.DeleteDraftPayslip(ctx, h.DB, p.ID); won {
		t.Fatal("finalized лист не должен удаляться как черновик")
	}
	if won, _ := db.SetPayslipStatus(ctx, h.DB, p.ID, models.PayslipFinalized, models.PayslipPaid); !won {
		t.Fatal("finalized → paid не прошёл")
	}
}

func TestDeleteDraftPayslip_AllowsRegeneration(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	teacherID := mustSeedTeacher(t, h.DB, "Мария")
	classID := mustSeedClass(t, h.DB, teacherID, models.RatePerClass, 300)
	mustCompletedSession(t, h.DB, classID, teacherID, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 9, 300, true)

	p, err := db.InsertPayslipFromEligible(ctx, h.DB, teacherID, 2024, time.March, 1)
	if err != nil || p == nil {
		t.Fatalf("лист не создан: %v", err)
	}
	if won, err := db.DeleteDraftPayslip(ctx, h.DB, p.ID); err != nil || !won {
		t.Fatalf("удаление черновика: won=%v err=%v", won, err)
	}

	// После удаления месяц открыт для перегенерации.
	p2, err := db.InsertPayslipFromEligible(ctx, h.DB, teacherID, 2024, time.March, 1)
	if err != nil || p2 == nil {
		t.Fatalf("перегенерация после удаления: %v", err)
	}
	if p2.ID == p.ID {
		t.Fatal("перегенерация должна создать новую запись")
	}
}
