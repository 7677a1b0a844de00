package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
)

// CreateTimetable — расписание + слоты одной транзакцией. На классе может
// быть только одно расписание: конфликт превращаем в DuplicateError со
// ссылкой на существующее.
func CreateTimetable(ctx context.Context, database *sql.DB, t models.Timetable) (int64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO timetables (class_id, recurrence_pattern, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.ClassID, t.Pattern, t.StartDate, t.EndDate, t.IsActive,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			existing, _ := timetableIDByClass(ctx, database, t.ClassID)
			return 0, &models.DuplicateError{Resource: "расписание класса", ExistingID: existing}
		}
		return 0, err
	}

	if err := insertSlots(ctx, tx, id, t.Schedule); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertSlots(ctx context.Context, tx *sql.Tx, timetableID int64, ws models.WeeklySchedule) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timetable_slots (timetable_id, weekday, start_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (timetable_id, weekday, start_time) DO NOTHING`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for wd, times := range ws {
		for _, t := range times {
			if _, err := stmt.ExecContext(ctx, timetableID, wd, t.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func timetableIDByClass(ctx context.Context, database *sql.DB, classID int64) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx,
		`SELECT id FROM timetables WHERE class_id = $1`, classID).Scan(&id)
	return id, err
}

// GetTimetable — вместе со слотами; nil без ошибки, если записи нет.
func GetTimetable(ctx context.Context, database *sql.DB, id int64) (*models.Timetable, error) {
	row := database.QueryRowContext(ctx, `
		SELECT id, class_id, recurrence_pattern, start_date, end_date, is_active, created_at
		FROM timetables WHERE id = $1`, id)

	var t models.Timetable
	if err := row.Scan(&t.ID, &t.ClassID, &t.Pattern, &t.StartDate, &t.EndDate, &t.IsActive, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := loadSlots(ctx, database, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func loadSlots(ctx context.Context, database *sql.DB, t *models.Timetable) error {
	rows, err := database.QueryContext(ctx, `
		SELECT weekday, start_time::text
		FROM timetable_slots
		WHERE timetable_id = $1
		ORDER BY weekday, start_time`, t.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var wd int
		var raw string
		if err := rows.Scan(&wd, &raw); err != nil {
			return err
		}
		tod, err := models.ParseTimeOfDay(raw)
		if err != nil {
			return err
		}
		t.Schedule[wd] = append(t.Schedule[wd], tod)
	}
	return rows.Err()
}

// ReplaceSlots — правка недельной сетки. Слоты меняем целиком; уже
// созданные занятия не трогаем, будущее окно пересоздаёт сервис.
func ReplaceSlots(ctx context.Context, database *sql.DB, timetableID int64, ws models.WeeklySchedule) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM timetable_slots WHERE timetable_id = $1`, timetableID); err != nil {
		return err
	}
	if err := insertSlots(ctx, tx, timetableID, ws); err != nil {
		return err
	}
	return tx.Commit()
}

// SetTimetableActive — отключение расписания останавливает только
// будущую генерацию, уже созданные занятия остаются.
func SetTimetableActive(ctx context.Context, database *sql.DB, id int64, active bool) error {
	res, err := database.ExecContext(ctx,
		`UPDATE timetables SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListActiveTimetables — активные расписания, по которым ещё может
// понадобиться генерация: открытые либо с end_date не раньше from.
func ListActiveTimetables(ctx context.Context, database *sql.DB, from time.Time) ([]models.Timetable, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT id, class_id, recurrence_pattern, start_date, end_date, is_active, created_at
		FROM timetables
		WHERE is_active AND (end_date IS NULL OR end_date >= $1)
		ORDER BY id`, from)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Timetable
	for rows.Next() {
		var t models.Timetable
		if err := rows.Scan(&t.ID, &t.ClassID, &t.Pattern, &t.StartDate, &t.EndDate, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := loadSlots(ctx, database, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
