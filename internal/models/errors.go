package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition — попытка перевести занятие из недопустимого
// статуса. Никаких мутаций при этом не происходит.
var ErrInvalidTransition = errors.New("недопустимый переход статуса занятия")

// ErrNotFound — запрошенной записи нет.
var ErrNotFound = errors.New("запись не найдена")

// ValidationError — некорректный ввод, отклоняется до любых записей в БД.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("валидация %s: %s", e.Field, e.Message)
}

// DuplicateError — нарушение уникальности (расписание класса, расчётный
// лист за месяц). ExistingID указывает на конфликтующую запись, если она
// известна.
type DuplicateError struct {
	Resource   string
	ExistingID int64
}

func (e *DuplicateError) Error() string {
	if e.ExistingID != 0 {
		return fmt.Sprintf("%s уже существует (id=%d)", e.Resource, e.ExistingID)
	}
	return fmt.Sprintf("%s уже существует", e.Resource)
}

// IsDuplicate — удобная проверка для вызывающих.
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}
