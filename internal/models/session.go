package models

import "time"

type SessionStatus string

const (
	SessionScheduled   SessionStatus = "scheduled"
	SessionOngoing     SessionStatus = "ongoing"
	SessionCompleted   SessionStatus = "completed"
	SessionCancelled   SessionStatus = "cancelled"
	SessionNoShow      SessionStatus = "no_show"
	SessionRescheduled SessionStatus = "rescheduled"
)

// sessionTransitions — единственная таблица переходов статуса.
// Всё, что не перечислено, запрещено; completed/cancelled/no_show —
// терминальные состояния.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled: {SessionOngoing, SessionCancelled, SessionNoShow, SessionRescheduled},
	SessionOngoing:   {SessionCompleted},
}

// CanTransition — допустим ли переход from → to.
func CanTransition(from, to SessionStatus) bool {
	for _, s := range sessionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session — конкретное занятие класса на дату/время.
// AssignedTo — подменный преподаватель только этого занятия;
// nil значит «наследуем преподавателя класса».
type Session struct {
	ID              int64         `db:"id"`
	ClassID         int64         `db:"class_id"`
	Date            time.Time     `db:"session_date"`
	Time            TimeOfDay     `db:"session_time"`
	DurationMinutes int           `db:"duration_minutes"`
	Status          SessionStatus `db:"status"`
	StartedAt       *time.Time    `db:"started_at"`
	CompletedAt     *time.Time    `db:"completed_at"`
	StartedBy       *int64        `db:"started_by"`
	AssignedTo      *int64        `db:"assigned_to"`
	AllowanceAmount *float64      `db:"allowance_amount"`
	VerifiedAt      *time.Time    `db:"verified_at"`
	VerifiedBy      *int64        `db:"verified_by"`
	VerifierRole    *string       `db:"verifier_role"`
	CreatedAt       time.Time     `db:"created_at"`
}

// EffectiveTeacher — преподаватель занятия с учётом подмены.
func (s *Session) EffectiveTeacher(classTeacherID int64) int64 {
	if s.AssignedTo != nil {
		return *s.AssignedTo
	}
	return classTeacherID
}

// ActualDuration — фактическая длительность; nil, пока занятие не завершено.
func (s *Session) ActualDuration() *time.Duration {
	if s.StartedAt == nil || s.CompletedAt == nil {
		return nil
	}
	d := s.CompletedAt.Sub(*s.StartedAt)
	return &d
}

// MeetsKPI — выполнен ли норматив по длительности. Второй результат
// false, пока фактической длительности ещё нет.
func (s *Session) MeetsKPI() (bool, bool) {
	d := s.ActualDuration()
	if d == nil {
		return false, false
	}
	return *d >= time.Duration(s.DurationMinutes)*time.Minute, true
}

func (s *Session) IsVerified() bool { return s.VerifiedAt != nil }

type AttendanceStatus string

const (
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceAbsent, AttendancePresent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance — ровно одна строка на пару (занятие, ученик).
// Засевается со статусом absent при создании занятия; дальше её меняют
// только модули отметки посещаемости.
type Attendance struct {
	ID           int64            `db:"id"`
	SessionID    int64            `db:"session_id"`
	StudentID    int64            `db:"student_id"`
	EnrollmentID int64            `db:"enrollment_id"`
	Status       AttendanceStatus `db:"status"`
}
