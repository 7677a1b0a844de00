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
	"github.com/Spok95/tutoring-admin/internal/notify"
)

// Payslips — месячная агрегация верифицированных занятий в расчётные
// листы.
type Payslips struct {
	DB  *sql.DB
	Log *zap.SugaredLogger
	// Notifier — необязательные служебные уведомления об итогах батчей.
	Notifier notify.Notifier
}

// Eligibility — отчёт предпросмотра: можно ли сформировать лист и что в
// него попадёт.
type Eligibility struct {
	Eligible     bool
	Reason       string
	ExistingID   int64
	SessionCount int
	TotalAmount  float64
}

// BatchResult — итог батча: успехи и отказы по каждому преподавателю.
type BatchResult struct {
	Successful []models.Payslip
	Failed     []BatchFailure
}

type BatchFailure struct {
	TeacherID int64
	Reason    string
}

// Preview — проверка пригодности без записи.
func (s *Payslips) Preview(ctx context.Context, teacherID int64, year int, month time.Month) (*Eligibility, error) {
	existing, err := db.GetPayslipForMonth(ctx, s.DB, teacherID, year, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Eligibility{
			Reason:     fmt.Sprintf("расчётный лист за %04d-%02d уже существует", year, int(month)),
			ExistingID: existing.ID,
		}, nil
	}

	teacher, err := db.GetTeacher(ctx, s.DB, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher == nil || !teacher.IsActive {
		return &Eligibility{Reason: "у преподавателя нет активного профиля"}, nil
	}

	count, total, err := db.EligibleSummary(ctx, s.DB, teacherID, year, month)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &Eligibility{Reason: "нет верифицированных занятий за месяц"}, nil
	}
	return &Eligibility{Eligible: true, SessionCount: count, TotalAmount: total}, nil
}

// Generate — создание листа. Пригодность перепроверяется, а итоги
// считаются тем же INSERT, что и вставка: между предпросмотром и
// коммитом ничего не протекает. Двойной сабмит ловит уникальный индекс
// и превращается в DuplicateError.
func (s *Payslips) Generate(ctx context.Context, teacherID int64, year int, month time.Month, actor Actor) (*models.Payslip, error) {
	elig, err := s.Preview(ctx, teacherID, year, month)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		if elig.ExistingID != 0 {
			return nil, &models.DuplicateError{Resource: "расчётный лист за месяц", ExistingID: elig.ExistingID}
		}
		return nil, models.NewValidationError("payslip", elig.Reason)
	}

	p, err := db.InsertPayslipFromEligible(ctx, s.DB, teacherID, year, month, actor.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		// Занятия успели расверифицировать между проверкой и вставкой.
		return nil, models.NewValidationError("payslip", "нет верифицированных занятий за месяц")
	}
	metrics.PayslipsGenerated.Inc()
	s.Log.Infow("расчётный лист создан",
		"payslip_id", p.ID, "teacher_id", teacherID,
		"sessions", p.TotalSessions, "amount", p.TotalAmount)
	return p, nil
}

// GenerateBatch — по преподавателю независимо: отказ одного (дубль,
// пустой месяц) не откатывает уже созданные листы других.
func (s *Payslips) GenerateBatch(ctx context.Context, teacherIDs []int64, year int, month time.Month, actor Actor) *BatchResult {
	res := &BatchResult{}
	for _, id := range teacherIDs {
		p, err := s.Generate(ctx, id, year, month, actor)
		if err != nil {
			res.Failed = append(res.Failed, BatchFailure{TeacherID: id, Reason: err.Error()})
			continue
		}
		res.Successful = append(res.Successful, *p)
	}
	if s.Notifier != nil && len(res.Failed) > 0 {
		s.Notifier.Notify(fmt.Sprintf(
			"⚠️ Расчётные листы за %04d-%02d: создано %d, отказов %d (подробности в логах)",
			year, int(month), len(res.Successful), len(res.Failed)))
	}
	return res
}

// Lines — построчная расшифровка (пересчитывается из занятий).
func (s *Payslips) Lines(ctx context.Context, teacherID int64, year int, month time.Month) ([]models.PayslipLine, error) {
	return db.EligibleLines(ctx, s.DB, teacherID, year, month)
}

func (s *Payslips) Finalize(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, models.PayslipDraft, models.PayslipFinalized)
}

func (s *Payslips) MarkPaid(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, models.PayslipFinalized, models.PayslipPaid)
}

func (s *Payslips) setStatus(ctx context.Context, id int64, from, to models.PayslipStatus) error {
	won, err := db.SetPayslipStatus(ctx, s.DB, id, from, to)
	if err != nil {
		return err
	}
	if !won {
		return fmt.Errorf("перевод листа %d в %q: %w", id, to, models.ErrInvalidTransition)
	}
	return nil
}

// DeleteDraft — штатная отмена ошибочной генерации.
func (s *Payslips) DeleteDraft(ctx context.Context, id int64) error {
	won, err := db.DeleteDraftPayslip(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if !won {
		return fmt.Errorf("удаление листа %d: не черновик либо не существует: %w", id, models.ErrInvalidTransition)
	}
	return nil
}
