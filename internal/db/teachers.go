package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/tutoring-admin/internal/models"
)

func CreateTeacher(ctx context.Context, database *sql.DB, name string) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO teachers (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

// GetTeacher — nil без ошибки, если профиля нет.
func GetTeacher(ctx context.Context, database *sql.DB, id int64) (*models.Teacher, error) {
	row := database.QueryRowContext(ctx,
		`SELECT id, name, is_active FROM teachers WHERE id = $1`, id)
	var t models.Teacher
	if err := row.Scan(&t.ID, &t.Name, &t.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func SetTeacherActive(ctx context.Context, database *sql.DB, id int64, active bool) error {
	_, err := database.ExecContext(ctx,
		`UPDATE teachers SET is_active = $2 WHERE id = $1`, id, active)
	return err
}
