// Package service — операции планирования и оплаты поверх internal/db.
// Внешние модули (зачисления, биллинг курсов, identity) подключаются
// только через интерфейсы этого пакета.
package service

import (
	"context"

	"github.com/Spok95/tutoring-admin/internal/models"
)

// EnrollmentSource — внешний модуль зачислений: активные ученики курса
// для засева посещаемости.
type EnrollmentSource interface {
	ActiveEnrollments(ctx context.Context, courseID int64) ([]models.Enrollment, error)
}

// CourseBillingSource — внешний модуль биллинга. nil без ошибки, если
// настроек у курса нет (дальше сработает нулевой fallback).
type CourseBillingSource interface {
	BillingSettings(ctx context.Context, courseID int64) (*models.CourseBilling, error)
}

// Actor — кто выполняет операцию. Роль прокидывается как есть и
// снимается в записи верификации.
type Actor struct {
	UserID int64
	Role   string
}
