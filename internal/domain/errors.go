package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ConnectionErrorMessage показывается, когда ответа от бэкенда нет вообще.
const ConnectionErrorMessage = "Erro de conexão. Verifique sua internet e tente novamente."

var (
	// ErrNoSession — действие требует валидного токена, а его нет
	ErrNoSession = errors.New("no active session")
	// ErrBusy — такая же операция над этим объектом уже выполняется
	ErrBusy = errors.New("operation already in flight")
)

// AuthError — неверные учетные данные, просроченный или битый токен.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Cause)
	}
	return "auth: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Cause }

// FieldErrors — сообщения об ошибках по именам полей формы
type FieldErrors map[string]string

// ValidationError никогда не уходит в сеть: форма разбирается с ней сама.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// NetworkError — запрос не удался или бэкенд вернул не-2xx.
// Status == 0 означает, что ответа не было совсем.
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Cause   error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: connection failed: %v", e.Op, e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// UserMessage — текст для пользователя: сообщение бэкенда, если оно есть.
func (e *NetworkError) UserMessage(fallback string) string {
	if e.Status == 0 {
		return ConnectionErrorMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// NotAuthorizedError — попытка привилегированного действия без нужной роли.
type NotAuthorizedError struct {
	Action   string
	Required []Role
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized to %s", e.Action)
}

// UserMessage возвращает текст для пользователя по любой ошибке слоя.
func UserMessage(err error, fallback string) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.UserMessage(fallback)
	}
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	var denied *NotAuthorizedError
	if errors.As(err, &denied) {
		return "Você não tem permissão para realizar esta ação."
	}
	return fallback
}
