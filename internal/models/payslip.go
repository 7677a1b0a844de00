package models

import "time"

type PayslipStatus string

const (
	PayslipDraft     PayslipStatus = "draft"
	PayslipFinalized PayslipStatus = "finalized"
	PayslipPaid      PayslipStatus = "paid"
)

// Payslip — месячный расчётный лист преподавателя. Уникальность по
// (teacher_id, year, month) обеспечена ограничением в БД, а не только
// проверкой в коде.
type Payslip struct {
	ID            int64         `db:"id"`
	TeacherID     int64         `db:"teacher_id"`
	Year          int           `db:"year"`
	Month         time.Month    `db:"month"`
	TotalSessions int           `db:"total_sessions"`
	TotalAmount   float64       `db:"total_amount"`
	Status        PayslipStatus `db:"status"`
	GeneratedBy   int64         `db:"generated_by"`
	GeneratedAt   time.Time     `db:"generated_at"`
}

// PayslipLine — строка расчётного листа. Производное представление:
// пересчитывается из верифицированных занятий, в БД не хранится.
type PayslipLine struct {
	SessionID       int64
	ClassTitle      string
	Date            time.Time
	Time            TimeOfDay
	DurationMinutes int
	Amount          float64
	Substitute      bool
}
