package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
	"github.com/Spok95/tutoring-admin/internal/schedule"
)

const sessionColumns = `id, class_id, session_date, session_time::text, duration_minutes, status,
	started_at, completed_at, started_by, assigned_to, allowance_amount,
	verified_at, verified_by, verifier_role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	var rawTime string
	err := row.Scan(&s.ID, &s.ClassID, &s.Date, &rawTime, &s.DurationMinutes, &s.Status,
		&s.StartedAt, &s.CompletedAt, &s.StartedBy, &s.AssignedTo, &s.AllowanceAmount,
		&s.VerifiedAt, &s.VerifiedBy, &s.VerifierRole, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if s.Time, err = models.ParseTimeOfDay(rawTime); err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertGeneratedSessions — пачечная вставка слотов расписания.
// Конфликты по (class_id, session_date, session_time) игнорируются
// (idempotent): повторная генерация того же окна не создаёт дублей.
// Возвращает id только реально созданных занятий.
func InsertGeneratedSessions(ctx context.Context, database *sql.DB, classID int64, durationMinutes int, occs []schedule.Occurrence) ([]int64, error) {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sessions (class_id, session_date, session_time, duration_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (class_id, session_date, session_time) DO NOTHING
		RETURNING id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	created := make([]int64, 0, len(occs))
	for _, o := range occs {
		var id int64
		err := stmt.QueryRowContext(ctx, classID, o.Date, o.Time.String(), durationMinutes).Scan(&id)
		if err == sql.ErrNoRows {
			continue // слот уже материализован
		}
		if err != nil {
			return nil, err
		}
		created = append(created, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateSingleSession — занятие без расписания (неповторяющийся класс).
func CreateSingleSession(ctx context.Context, database *sql.DB, classID int64, date time.Time, t models.TimeOfDay, durationMinutes int) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO sessions (class_id, session_date, session_time, duration_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		classID, date, t.String(), durationMinutes).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &models.DuplicateError{Resource: "занятие на эту дату и время"}
		}
		return 0, err
	}
	return id, nil
}

func GetSessionByID(ctx context.Context, database *sql.DB, id int64) (*models.Session, error) {
	s, err := scanSession(database.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// ListSessions — занятия класса в окне [from, to), хронологический
// порядок (контракт для календаря).
func ListSessions(ctx context.Context, database *sql.DB, classID int64, from, to time.Time) ([]models.Session, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE class_id = $1 AND session_date >= $2 AND session_date < $3
		ORDER BY session_date, session_time`, classID, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// StartSession — атомарный перевод scheduled → ongoing. Возвращает false,
// если занятие не в scheduled (гонку выигрывает один оператор).
func StartSession(ctx context.Context, database *sql.DB, id, byUser int64) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET status = 'ongoing', started_at = now(), started_by = $2
		WHERE id = $1 AND status = 'scheduled'`, id, byUser)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// CompleteSession — атомарный перевод ongoing → completed с фиксацией
// суммы вознаграждения, рассчитанной сервисом.
func CompleteSession(ctx context.Context, database *sql.DB, id int64, amount float64) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET status = 'completed', completed_at = now(), allowance_amount = $2
		WHERE id = $1 AND status = 'ongoing'`, id, amount)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// MarkSessionFrom — перевод scheduled → cancelled/no_show/rescheduled.
// Вознаграждение не считается, строки посещаемости остаются.
func MarkSessionFrom(ctx context.Context, database *sql.DB, id int64, to models.SessionStatus) (bool, error) {
	if !models.CanTransition(models.SessionScheduled, to) {
		return false, nil
	}
	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET status = $2
		WHERE id = $1 AND status = 'scheduled'`, id, to)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// AssignSubstitute — подмена преподавателя на одно занятие (nil — снять
// подмену). Разрешено только пока занятие в scheduled; преподавателя
// класса не трогаем.
func AssignSubstitute(ctx context.Context, database *sql.DB, id int64, teacherID *int64) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET assigned_to = $2
		WHERE id = $1 AND status = 'scheduled'`, id, teacherID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// VerifySession — административное подтверждение к выплате. Требует
// completed, рассчитанную сумму (ноль — тоже сумма) и отсутствие
// прежней верификации. Роль снимается на момент подтверждения.
func VerifySession(ctx context.Context, database *sql.DB, id, byUser int64, role string) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET verified_at = now(), verified_by = $2, verifier_role = $3
		WHERE id = $1 AND status = 'completed'
		  AND allowance_amount IS NOT NULL
		  AND verified_at IS NULL`, id, byUser, role)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// UnverifySession — откат подтверждения до закрытия расчётного листа.
func UnverifySession(ctx context.Context, database *sql.DB, id int64) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET verified_at = NULL, verified_by = NULL, verifier_role = NULL
		WHERE id = $1 AND verified_at IS NOT NULL`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
