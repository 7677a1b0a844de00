package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/tutoring-admin/internal/models"
)

const classColumns = `id, course_id, teacher_id, title, duration_minutes, class_type, capacity,
	teacher_rate, rate_type, commission_type, commission_value, status, created_at`

func CreateClass(ctx context.Context, database *sql.DB, c models.Class) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO classes (course_id, teacher_id, title, duration_minutes, class_type, capacity,
			teacher_rate, rate_type, commission_type, commission_value, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		c.CourseID, c.TeacherID, c.Title, c.DurationMinutes, c.Type, c.Capacity,
		c.TeacherRate, c.RateType, c.CommissionType, c.CommissionValue, c.Status,
	).Scan(&id)
	return id, err
}

func GetClassByID(ctx context.Context, database *sql.DB, id int64) (*models.Class, error) {
	row := database.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	var c models.Class
	err := row.Scan(&c.ID, &c.CourseID, &c.TeacherID, &c.Title, &c.DurationMinutes, &c.Type,
		&c.Capacity, &c.TeacherRate, &c.RateType, &c.CommissionType, &c.CommissionValue,
		&c.Status, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func ListClassesByTeacher(ctx context.Context, database *sql.DB, teacherID int64) ([]models.Class, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE teacher_id = $1 ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.CourseID, &c.TeacherID, &c.Title, &c.DurationMinutes, &c.Type,
			&c.Capacity, &c.TeacherRate, &c.RateType, &c.CommissionType, &c.CommissionValue,
			&c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func SetClassStatus(ctx context.Context, database *sql.DB, id int64, status models.ClassStatus) error {
	_, err := database.ExecContext(ctx,
		`UPDATE classes SET status = $2 WHERE id = $1`, id, status)
	return err
}
