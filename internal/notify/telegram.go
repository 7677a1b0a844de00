// Package notify — служебные уведомления администраторам в Telegram:
// итоги генерации занятий и батчей расчётных листов. Клиентских
// рассылок здесь нет.
package notify

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tutoring-admin/internal/observability"
)

// Notifier — получатель служебных сообщений. Пустая реализация Noop
// используется, когда токен бота не задан.
type Notifier interface {
	Notify(text string)
}

type Noop struct{}

func (Noop) Notify(string) {}

type Telegram struct {
	Bot      *tgbotapi.BotAPI
	AdminIDs []int64
}

func NewTelegram(token string, adminIDs []int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{Bot: bot, AdminIDs: adminIDs}, nil
}

func (t *Telegram) Notify(text string) {
	for _, id := range t.AdminIDs {
		msg := tgbotapi.NewMessage(id, text)
		if _, err := t.Bot.Send(msg); isSystemErr(err) {
			observability.CaptureErr(err)
		}
	}
}

// Системными считаем 5xx, 429, timeout; телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}
