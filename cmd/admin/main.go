package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Spok95/tutoring-admin/internal/app"
	"github.com/Spok95/tutoring-admin/internal/collab"
	"github.com/Spok95/tutoring-admin/internal/config"
	"github.com/Spok95/tutoring-admin/internal/db"
	"github.com/Spok95/tutoring-admin/internal/jobs"
	"github.com/Spok95/tutoring-admin/internal/logging"
	"github.com/Spok95/tutoring-admin/internal/notify"
	"github.com/Spok95/tutoring-admin/internal/observability"
	"github.com/Spok95/tutoring-admin/internal/service"
)

var release = "dev" // проставляется при сборке через -ldflags

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry не инициализирован", "err", err)
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("подключение к БД", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("миграции", "err", err)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.BotToken != "" {
		tgNotifier, err := notify.NewTelegram(cfg.BotToken, cfg.AdminIDs)
		if err != nil {
			lg.Sugar.Warnw("telegram-уведомления выключены", "err", err)
		} else {
			notifier = tgNotifier
		}
	}

	platform := collab.New(cfg.PlatformAPI)

	timetables := &service.Timetables{
		DB:            database,
		Log:           lg.Named("service.timetables"),
		Enrollments:   platform,
		HorizonMonths: cfg.HorizonMonths,
		Loc:           cfg.Location,
	}
	api := &app.API{
		Classes:    &service.Classes{DB: database, Log: lg.Named("service.classes"), Enrollments: platform},
		Timetables: timetables,
		Sessions:   &service.Sessions{DB: database, Log: lg.Named("service.sessions"), Billing: platform},
		Payslips:   &service.Payslips{DB: database, Log: lg.Named("service.payslips"), Notifier: notifier},
		Log:        lg.Named("api"),
	}

	runner := jobs.New(ctx)
	genJob := &jobs.GenerationJob{
		DB:         database,
		Log:        lg.Named("jobs.generation"),
		Timetables: timetables,
		Notifier:   notifier,
	}
	runner.Every(24*time.Hour, "session_generation", genJob.Run)

	app.StartHTTP(ctx, cfg.HTTPAddr, database, api)

	lg.Sugar.Infow("сервис запущен", "http", cfg.HTTPAddr, "env", cfg.Env)
	<-ctx.Done()
	lg.Sugar.Info("остановка по сигналу")
	// даём фоновым операциям дописаться
	time.Sleep(500 * time.Millisecond)
}
