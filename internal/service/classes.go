package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/models"
)

// Classes — создание классов. Неповторяющийся класс получает ровно одно
// занятие сразу при создании, минуя разворачивание расписания.
type Classes struct {
	DB          *sql.DB
	Log         *zap.SugaredLogger
	Enrollments EnrollmentSource
}

func (s *Classes) Create(ctx context.Context, c models.Class) (int64, error) {
	if c.Status == "" {
		c.Status = models.ClassActive
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	teacher, err := db.GetTeacher(ctx, s.DB, c.TeacherID)
	if err != nil {
		return 0, err
	}
	if teacher == nil {
		return 0, fmt.Errorf("преподаватель %d: %w", c.TeacherID, models.ErrNotFound)
	}
	return db.CreateClass(ctx, s.DB, c)
}

// CreateWithSession — класс на одно занятие: создаём класс, занятие на
// указанную дату/время и сразу засеваем посещаемость по активным
// зачислениям курса.
func (s *Classes) CreateWithSession(ctx context.Context, c models.Class, date time.Time, t models.TimeOfDay) (int64, int64, error) {
	classID, err := s.Create(ctx, c)
	if err != nil {
		return 0, 0, err
	}
	sessionID, err := db.CreateSingleSession(ctx, s.DB, classID, date, t, c.DurationMinutes)
	if err != nil {
		return 0, 0, err
	}

	enrollments, err := s.Enrollments.ActiveEnrollments(ctx, c.CourseID)
	if err != nil {
		// Занятие уже создано; посещаемость досеется позже.
		s.Log.Warnw("не удалось получить зачисления", "course_id", c.CourseID, "err", err)
		return classID, sessionID, nil
	}
	if _, err := db.SeedAttendance(ctx, s.DB, sessionID, enrollments); err != nil {
		s.Log.Warnw("не удалось засеять посещаемость", "session_id", sessionID, "err", err)
	}
	return classID, sessionID, nil
}
