package jobs

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/tutoring-admin/internal/ctxutil"
	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/notify"
	"github.com/Spok95/tutoring-admin/internal/service"
)

// GenerationJob — продление горизонта материализации: раз в сутки
// догенерирует занятия всем активным расписаниям. Отказ одного
// расписания не прерывает остальные.
type GenerationJob struct {
	DB         *sql.DB
	Log        *zap.SugaredLogger
	Timetables *service.Timetables
	Notifier   notify.Notifier
}

func (j *GenerationJob) Run(ctx context.Context) error {
	ctx = ctxutil.WithOp(ctx, "jobs.generation")
	now := j.Timetables.Now()
	through := j.Timetables.Horizon(now)

	listCtx, cancel := ctxutil.WithDBTimeout(ctx)
	timetables, err := db.ListActiveTimetables(listCtx, j.DB, now)
	cancel()
	if err != nil {
		return err
	}

	created, failed := 0, 0
	for _, t := range timetables {
		report, err := j.Timetables.Regenerate(ctx, t.ID, through)
		if err != nil {
			failed++
			j.Log.Errorw("догенерация расписания не удалась", "timetable_id", t.ID, "err", err)
			continue
		}
		created += report.SessionsCreated
		failed += len(report.Failed)
	}

	if failed > 0 {
		j.Notifier.Notify(fmt.Sprintf(
			"⚠️ Генерация занятий: создано %d, ошибок %d (подробности в логах)", created, failed))
	}
	j.Log.Infow("проход генерации завершён", "timetables", len(timetables), "created", created, "failed", failed)
	return nil
}
