package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
)

// eligibleWhere — какие занятия попадают в расчётный лист: занятие
// закрыто, подтверждено и лежит в целевом месяце. Преподаватель
// резолвится с учётом подмены (assigned_to перекрывает преподавателя
// класса, см. EffectiveTeacher). Именно COALESCE, а не
// «teacher_id = $1 OR assigned_to = $1»: дизъюнкция засчитала бы
// подменённое занятие обоим и оплатила его дважды.
const eligibleWhere = `
	FROM sessions s
	JOIN classes c ON c.id = s.class_id
	WHERE COALESCE(s.assigned_to, c.teacher_id) = $1
	  AND s.status = 'completed'
	  AND s.verified_at IS NOT NULL
	  AND s.session_date >= $2 AND s.session_date < $3`

func monthWindow(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// GetPayslipForMonth — nil без ошибки, если листа за месяц нет.
func GetPayslipForMonth(ctx context.Context, database *sql.DB, teacherID int64, year int, month time.Month) (*models.Payslip, error) {
	row := database.QueryRowContext(ctx, `
		SELECT id, teacher_id, year, month, total_sessions, total_amount, status, generated_by, generated_at
		FROM payslips
		WHERE teacher_id = $1 AND year = $2 AND month = $3`, teacherID, year, int(month))
	var p models.Payslip
	var m int
	err := row.Scan(&p.ID, &p.TeacherID, &p.Year, &m, &p.TotalSessions, &p.TotalAmount, &p.Status, &p.GeneratedBy, &p.GeneratedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Month = time.Month(m)
	return &p, nil
}

// EligibleSummary — количество и сумма занятий, готовых к выплате.
func EligibleSummary(ctx context.Context, database *sql.DB, teacherID int64, year int, month time.Month) (int, float64, error) {
	from, to := monthWindow(year, month)
	var count int
	var total float64
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(s.allowance_amount), 0)`+eligibleWhere,
		teacherID, from, to).Scan(&count, &total)
	return count, total, err
}

// EligibleLines — построчная расшифровка листа. Производная выборка:
// в payslips ссылок на занятия нет, строки пересчитываются всегда.
func EligibleLines(ctx context.Context, database *sql.DB, teacherID int64, year int, month time.Month) ([]models.PayslipLine, error) {
	from, to := monthWindow(year, month)
	rows, err := database.QueryContext(ctx, `
		SELECT s.id, c.title, s.session_date, s.session_time::text, s.duration_minutes,
		       s.allowance_amount, s.assigned_to IS NOT NULL`+eligibleWhere+`
		ORDER BY s.session_date, s.session_time`, teacherID, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PayslipLine
	for rows.Next() {
		var l models.PayslipLine
		var rawTime string
		if err := rows.Scan(&l.SessionID, &l.ClassTitle, &l.Date, &rawTime, &l.DurationMinutes, &l.Amount, &l.Substitute); err != nil {
			return nil, err
		}
		if l.Time, err = models.ParseTimeOfDay(rawTime); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertPayslipFromEligible — создание листа одним INSERT ... SELECT:
// итоги считаются тем же запросом, что и вставка, так что лист и его
// суммы либо записываются вместе, либо не записываются вовсе.
// HAVING COUNT(*) > 0 режет пустые месяцы, уникальный индекс — гонку
// двойного сабмита.
func InsertPayslipFromEligible(ctx context.Context, database *sql.DB, teacherID int64, year int, month time.Month, generatedBy int64) (*models.Payslip, error) {
	from, to := monthWindow(year, month)
	row := database.QueryRowContext(ctx, `
		INSERT INTO payslips (teacher_id, year, month, total_sessions, total_amount, status, generated_by)
		SELECT $1, $4, $5, COUNT(*), COALESCE(SUM(s.allowance_amount), 0), 'draft', $6`+eligibleWhere+`
		HAVING COUNT(*) > 0
		RETURNING id, teacher_id, year, month, total_sessions, total_amount, status, generated_by, generated_at`,
		teacherID, from, to, year, int(month), generatedBy)

	var p models.Payslip
	var m int
	err := row.Scan(&p.ID, &p.TeacherID, &p.Year, &m, &p.TotalSessions, &p.TotalAmount, &p.Status, &p.GeneratedBy, &p.GeneratedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // нет занятий к выплате
		}
		if isUniqueViolation(err) {
			existing, _ := GetPayslipForMonth(ctx, database, teacherID, year, month)
			dup := &models.DuplicateError{Resource: "расчётный лист за месяц"}
			if existing != nil {
				dup.ExistingID = existing.ID
			}
			return nil, dup
		}
		return nil, err
	}
	p.Month = time.Month(m)
	return &p, nil
}

// SetPayslipStatus — переходы статуса листа: draft → finalized → paid.
func SetPayslipStatus(ctx context.Context, database *sql.DB, id int64, from, to models.PayslipStatus) (bool, error) {
	res, err := database.ExecContext(ctx, `
		UPDATE payslips SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// DeleteDraftPayslip — удалять можно только черновик; это штатный
// способ отменить ошибочную генерацию.
func DeleteDraftPayslip(ctx context.Context, database *sql.DB, id int64) (bool, error) {
	res, err := database.ExecContext(ctx,
		`DELETE FROM payslips WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
