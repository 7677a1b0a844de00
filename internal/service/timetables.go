package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/metrics"
	"github.com/Spok95/tutoring-admin/internal/models"
	"github.com/Spok95/tutoring-admin/internal/schedule"
)

// Timetables — создание расписаний и материализация занятий.
type Timetables struct {
	DB          *sql.DB
	Log         *zap.SugaredLogger
	Enrollments EnrollmentSource
	// HorizonMonths — на сколько месяцев вперёд материализуем занятия
	// открытых расписаний.
	HorizonMonths int
	// Loc — зона бизнес-дат (TZ из конфига). Пустое значение — time.Local.
	Loc *time.Location
}

// Now — текущее время в бизнес-зоне сервиса.
func (s *Timetables) Now() time.Time {
	if s.Loc != nil {
		return time.Now().In(s.Loc)
	}
	return time.Now()
}

// GenerationReport — итог одного прохода генерации. Ошибки засева
// посещаемости копятся по занятиям и не прерывают проход.
type GenerationReport struct {
	SessionsCreated  int
	AttendanceSeeded int
	Failed           []GenerationFailure
}

type GenerationFailure struct {
	SessionID int64
	Reason    string
}

// Horizon — верхняя граница материализации от момента now.
func (s *Timetables) Horizon(now time.Time) time.Time {
	months := s.HorizonMonths
	if months <= 0 {
		months = 3
	}
	return now.AddDate(0, months, 0)
}

// Create — расписание класса + материализация занятий начального окна.
func (s *Timetables) Create(ctx context.Context, classID int64, ws models.WeeklySchedule, pattern models.RecurrencePattern, startDate time.Time, endDate *time.Time) (*models.Timetable, *GenerationReport, error) {
	t := models.Timetable{
		ClassID:   classID,
		Schedule:  ws,
		Pattern:   pattern,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	class, err := db.GetClassByID(ctx, s.DB, classID)
	if err != nil {
		return nil, nil, err
	}
	if class == nil {
		return nil, nil, fmt.Errorf("класс %d: %w", classID, models.ErrNotFound)
	}

	// Окно первичной материализации проверяем до вставки: иначе ошибка
	// валидации оставит расписание без занятий, а повтор упрётся в дубликат.
	to := s.Horizon(s.Now())
	if endDate != nil && endDate.Before(to) {
		to = *endDate
	}
	if !to.Before(startDate) {
		if err := schedule.CheckRange(startDate, to); err != nil {
			return nil, nil, err
		}
	}

	id, err := db.CreateTimetable(ctx, s.DB, t)
	if err != nil {
		return nil, nil, err
	}
	t.ID = id

	// Первичная материализация идёт от start_date: допускаем ввод
	// задним числом. Будущие прогоны работают уже только от сегодня.
	report, err := s.materialize(ctx, &t, class, t.StartDate, s.Horizon(s.Now()))
	if err != nil {
		return nil, nil, err
	}
	return &t, report, nil
}

// Regenerate — догенерация занятий расписания до даты through.
// Прошлое не трогаем: уже созданные занятия переживают любые правки
// сетки, вставляются только недостающие будущие слоты.
func (s *Timetables) Regenerate(ctx context.Context, timetableID int64, through time.Time) (*GenerationReport, error) {
	t, err := db.GetTimetable(ctx, s.DB, timetableID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("расписание %d: %w", timetableID, models.ErrNotFound)
	}
	if !t.IsActive {
		return &GenerationReport{}, nil
	}
	class, err := db.GetClassByID(ctx, s.DB, t.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, fmt.Errorf("класс %d: %w", t.ClassID, models.ErrNotFound)
	}
	from := t.StartDate
	if today := truncateDay(s.Now()); today.After(from) {
		from = today
	}
	return s.materialize(ctx, t, class, from, through)
}

// UpdateSchedule — новая недельная сетка: заменяем слоты и пересоздаём
// только будущее окно. Завершённые и прошедшие занятия не меняются.
func (s *Timetables) UpdateSchedule(ctx context.Context, timetableID int64, ws models.WeeklySchedule) (*GenerationReport, error) {
	if ws.IsEmpty() {
		return nil, models.NewValidationError("weekly_schedule", "расписание не содержит ни одного времени")
	}
	if err := db.ReplaceSlots(ctx, s.DB, timetableID, ws); err != nil {
		return nil, err
	}
	return s.Regenerate(ctx, timetableID, s.Horizon(s.Now()))
}

// Deactivate останавливает будущую генерацию; созданные занятия остаются.
func (s *Timetables) Deactivate(ctx context.Context, timetableID int64) error {
	return db.SetTimetableActive(ctx, s.DB, timetableID, false)
}

// materialize — разворачивание и вставка окна [from, through] с засевом
// посещаемости для новых занятий.
func (s *Timetables) materialize(ctx context.Context, t *models.Timetable, class *models.Class, from, through time.Time) (*GenerationReport, error) {
	to := through
	if t.EndDate != nil && t.EndDate.Before(to) {
		to = *t.EndDate
	}
	if to.Before(from) {
		return &GenerationReport{}, nil
	}

	occs, err := schedule.Expand(t.Schedule, t.Pattern, from, to)
	if err != nil {
		return nil, err
	}
	created, err := db.InsertGeneratedSessions(ctx, s.DB, t.ClassID, class.DurationMinutes, occs)
	if err != nil {
		return nil, err
	}
	metrics.SessionsGenerated.Add(float64(len(created)))

	report := &GenerationReport{SessionsCreated: len(created)}
	enrollments, err := s.Enrollments.ActiveEnrollments(ctx, class.CourseID)
	if err != nil {
		// Генерация не откатывается: занятия уже есть, посещаемость
		// досеется при следующем проходе.
		s.Log.Warnw("не удалось получить зачисления", "course_id", class.CourseID, "err", err)
		for _, id := range created {
			report.Failed = append(report.Failed, GenerationFailure{SessionID: id, Reason: "зачисления недоступны: " + err.Error()})
		}
		return report, nil
	}

	// Засеваем все scheduled-занятия окна без посещаемости, а не только
	// созданные сейчас: так добираются занятия прошлых неудачных проходов.
	sessions, err := db.ListSessions(ctx, s.DB, t.ClassID, from, to)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if sess.Status != models.SessionScheduled {
			continue
		}
		if seeded, err := db.HasAttendance(ctx, s.DB, sess.ID); err == nil && seeded {
			continue
		}
		n, err := db.SeedAttendance(ctx, s.DB, sess.ID, enrollments)
		if err != nil {
			report.Failed = append(report.Failed, GenerationFailure{SessionID: sess.ID, Reason: err.Error()})
			continue
		}
		report.AttendanceSeeded += n
	}
	s.Log.Infow("генерация занятий",
		"timetable_id", t.ID, "created", report.SessionsCreated,
		"seeded", report.AttendanceSeeded, "failed", len(report.Failed))
	return report, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
