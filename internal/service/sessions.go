package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/tutoring-admin/internal/allowance"
	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/metrics"
	"github.com/Spok95/tutoring-admin/internal/models"
)

// Sessions — жизненный цикл занятия. Все переходы атомарны на уровне
// строки: из двух операторов гонку выигрывает один, второй получает
// ErrInvalidTransition без каких-либо мутаций.
type Sessions struct {
	DB      *sql.DB
	Log     *zap.SugaredLogger
	Billing CourseBillingSource
}

func (s *Sessions) load(ctx context.Context, sessionID int64) (*models.Session, error) {
	sess, err := db.GetSessionByID(ctx, s.DB, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("занятие %d: %w", sessionID, models.ErrNotFound)
	}
	return sess, nil
}

// transitionErr — диагностика проигранного CAS: либо записи нет, либо
// статус уже не тот.
func (s *Sessions) transitionErr(ctx context.Context, sessionID int64, action string) error {
	sess, err := db.GetSessionByID(ctx, s.DB, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("занятие %d: %w", sessionID, models.ErrNotFound)
	}
	return fmt.Errorf("%s из статуса %q: %w", action, sess.Status, models.ErrInvalidTransition)
}

// Start — scheduled → ongoing. Запуск не своим преподавателем (подмена,
// админ) разрешён, но подсвечивается в логах.
func (s *Sessions) Start(ctx context.Context, sessionID int64, actor Actor) (*models.Session, error) {
	won, err := db.StartSession(ctx, s.DB, sessionID, actor.UserID)
	if err != nil {
		return nil, err
	}
	metrics.Transition("start", won)
	if !won {
		return nil, s.transitionErr(ctx, sessionID, "start")
	}
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if class, err := db.GetClassByID(ctx, s.DB, sess.ClassID); err == nil && class != nil {
		if sess.EffectiveTeacher(class.TeacherID) != actor.UserID {
			s.Log.Infow("занятие запущено не назначенным преподавателем",
				"session_id", sessionID, "started_by", actor.UserID, "teacher_id", class.TeacherID)
		}
	}
	return sess, nil
}

// End — ongoing → completed: фиксируем completed_at и считаем
// вознаграждение. Отсутствие биллинговых настроек — не ошибка, а
// документированный fallback в ноль.
func (s *Sessions) End(ctx context.Context, sessionID int64) (*models.Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	class, err := db.GetClassByID(ctx, s.DB, sess.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, fmt.Errorf("класс %d: %w", sess.ClassID, models.ErrNotFound)
	}

	var billing *models.CourseBilling
	if class.RateType == models.RatePerSession {
		billing, err = s.Billing.BillingSettings(ctx, class.CourseID)
		if err != nil {
			return nil, err
		}
	}
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:        class.RateType,
		TeacherRate:     class.TeacherRate,
		Capacity:        class.Capacity,
		CommissionType:  class.CommissionType,
		CommissionValue: class.CommissionValue,
		DurationMinutes: sess.DurationMinutes,
		Billing:         billing,
	})
	if fallback {
		metrics.AllowanceFallbacks.Inc()
		s.Log.Warnw("вознаграждение обнулено: нет биллинговых настроек",
			"session_id", sessionID, "course_id", class.CourseID)
	}

	won, err := db.CompleteSession(ctx, s.DB, sessionID, amount)
	if err != nil {
		return nil, err
	}
	metrics.Transition("end", won)
	if !won {
		return nil, s.transitionErr(ctx, sessionID, "end")
	}
	return s.load(ctx, sessionID)
}

// Cancel — scheduled → cancelled. Посещаемость остаётся, но для выплат
// значения не имеет.
func (s *Sessions) Cancel(ctx context.Context, sessionID int64) (*models.Session, error) {
	return s.mark(ctx, sessionID, models.SessionCancelled, "cancel")
}

func (s *Sessions) MarkNoShow(ctx context.Context, sessionID int64) (*models.Session, error) {
	return s.mark(ctx, sessionID, models.SessionNoShow, "no_show")
}

func (s *Sessions) Reschedule(ctx context.Context, sessionID int64) (*models.Session, error) {
	return s.mark(ctx, sessionID, models.SessionRescheduled, "reschedule")
}

func (s *Sessions) mark(ctx context.Context, sessionID int64, to models.SessionStatus, action string) (*models.Session, error) {
	won, err := db.MarkSessionFrom(ctx, s.DB, sessionID, to)
	if err != nil {
		return nil, err
	}
	metrics.Transition(action, won)
	if !won {
		return nil, s.transitionErr(ctx, sessionID, action)
	}
	return s.load(ctx, sessionID)
}

// AssignSubstitute — подмена преподавателя одного занятия; nil снимает
// подмену. Допустимо только в scheduled.
func (s *Sessions) AssignSubstitute(ctx context.Context, sessionID int64, teacherID *int64) (*models.Session, error) {
	if teacherID != nil {
		teacher, err := db.GetTeacher(ctx, s.DB, *teacherID)
		if err != nil {
			return nil, err
		}
		if teacher == nil {
			return nil, fmt.Errorf("преподаватель %d: %w", *teacherID, models.ErrNotFound)
		}
	}
	won, err := db.AssignSubstitute(ctx, s.DB, sessionID, teacherID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.transitionErr(ctx, sessionID, "assign")
	}
	return s.load(ctx, sessionID)
}

// Verify — допуск занятия к выплате. Нулевая сумма верифицируется:
// подтверждается включение в расчёт, а не размер суммы.
func (s *Sessions) Verify(ctx context.Context, sessionID int64, actor Actor) (*models.Session, error) {
	won, err := db.VerifySession(ctx, s.DB, sessionID, actor.UserID, actor.Role)
	if err != nil {
		return nil, err
	}
	if !won {
		sess, err := db.GetSessionByID(ctx, s.DB, sessionID)
		if err != nil {
			return nil, err
		}
		switch {
		case sess == nil:
			return nil, fmt.Errorf("занятие %d: %w", sessionID, models.ErrNotFound)
		case sess.IsVerified():
			return nil, fmt.Errorf("занятие уже верифицировано: %w", models.ErrInvalidTransition)
		case sess.Status != models.SessionCompleted:
			return nil, fmt.Errorf("верификация из статуса %q: %w", sess.Status, models.ErrInvalidTransition)
		default:
			return nil, fmt.Errorf("вознаграждение ещё не рассчитано: %w", models.ErrInvalidTransition)
		}
	}
	return s.load(ctx, sessionID)
}

// Unverify — безусловный откат верификации для исправления ошибок до
// закрытия расчётного листа.
func (s *Sessions) Unverify(ctx context.Context, sessionID int64) (*models.Session, error) {
	if _, err := db.UnverifySession(ctx, s.DB, sessionID); err != nil {
		return nil, err
	}
	return s.load(ctx, sessionID)
}
