package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/tutoring-admin/internal/models"
)

// SeedAttendance — заготовки посещаемости для занятия: по строке на
// каждого активного ученика, статус absent. Повторный засев (после
// догенерации окна) дублей не создаёт.
func SeedAttendance(ctx context.Context, database *sql.DB, sessionID int64, enrollments []models.Enrollment) (int, error) {
	if len(enrollments) == 0 {
		return 0, nil
	}
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendances (session_id, student_id, enrollment_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, student_id) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	seeded := 0
	for _, e := range enrollments {
		res, err := stmt.ExecContext(ctx, sessionID, e.StudentID, e.EnrollmentID)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			seeded++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return seeded, nil
}

func ListAttendance(ctx context.Context, database *sql.DB, sessionID int64) ([]models.Attendance, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT id, session_id, student_id, enrollment_id, status
		FROM attendances
		WHERE session_id = $1
		ORDER BY student_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Attendance
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ID, &a.SessionID, &a.StudentID, &a.EnrollmentID, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetAttendanceStatus — отметка посещаемости одного ученика.
func SetAttendanceStatus(ctx context.Context, database *sql.DB, sessionID, studentID int64, status models.AttendanceStatus) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE attendances SET status = $3
		WHERE session_id = $1 AND student_id = $2`,
		sessionID, studentID, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// HasAttendance — есть ли у занятия хоть одна строка посещаемости.
// Такие занятия не удаляются, отмена — только смена статуса.
func HasAttendance(ctx context.Context, database *sql.DB, sessionID int64) (bool, error) {
	var exists bool
	err := database.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendances WHERE session_id = $1)`, sessionID).Scan(&exists)
	return exists, err
}
