package task

import "errors"

// Таксономия ошибок ядра. Все переходы либо применяются целиком,
// либо возвращают одну из этих ошибок - частичных изменений не бывает.
var (
	// ErrUnauthenticated - запрос без распознанного пользователя
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden - роль или владение не дают права на операцию
	ErrForbidden = errors.New("forbidden")

	// ErrNotEligible - специалист без одобренной заявки
	ErrNotEligible = errors.New("specialist account is not approved yet")

	// ErrTaskNotFound - задача с таким id не существует
	ErrTaskNotFound = errors.New("task not found")

	// ErrStateConflict - задача не в том статусе для перехода;
	// сюда же попадает проигрыш гонки за accept
	ErrStateConflict = errors.New("task is not available")

	// ErrValidation - некорректные данные при создании
	ErrValidation = errors.New("invalid task input")
)
