// Package collab — HTTP-клиенты внутренних модулей платформы
// (зачисления, биллинг курсов). Это внешние коллабораторы: здесь только
// тонкие клиенты под интерфейсы пакета service.
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/tutoring-admin/internal/models"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%s: http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}

var errNotFound = fmt.Errorf("collab: not found")

// ActiveEnrollments — активные зачисления курса из модуля зачислений.
func (c *Client) ActiveEnrollments(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	var payload struct {
		Enrollments []struct {
			StudentID    int64 `json:"student_id"`
			EnrollmentID int64 `json:"enrollment_id"`
		} `json:"enrollments"`
	}
	if err := c.get(ctx, fmt.Sprintf("/internal/courses/%d/enrollments?status=active", courseID), &payload); err != nil {
		if err == errNotFound {
			return nil, nil
		}
		return nil, err
	}
	out := make([]models.Enrollment, 0, len(payload.Enrollments))
	for _, e := range payload.Enrollments {
		out = append(out, models.Enrollment{StudentID: e.StudentID, EnrollmentID: e.EnrollmentID})
	}
	return out, nil
}

// BillingSettings — биллинговые настройки курса; nil без ошибки, если
// настроек нет (дальше сработает нулевой fallback).
func (c *Client) BillingSettings(ctx context.Context, courseID int64) (*models.CourseBilling, error) {
	var payload struct {
		BillingType      string  `json:"billing_type"`
		PricePerSession  float64 `json:"price_per_session"`
		PricePerMonth    float64 `json:"price_per_month"`
		SessionsPerMonth int     `json:"sessions_per_month"`
		PricePerMinute   float64 `json:"price_per_minute"`
	}
	if err := c.get(ctx, fmt.Sprintf("/internal/courses/%d/billing", courseID), &payload); err != nil {
		if err == errNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &models.CourseBilling{
		Type:             models.BillingType(payload.BillingType),
		PricePerSession:  payload.PricePerSession,
		PricePerMonth:    payload.PricePerMonth,
		SessionsPerMonth: payload.SessionsPerMonth,
		PricePerMinute:   payload.PricePerMinute,
	}, nil
}
