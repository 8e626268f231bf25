// Package apperr описывает ошибки, которые видит клиент API.
package apperr

import (
	"errors"
	"net/http"
)

// Kind вид ошибки; каждому виду соответствует HTTP статус
type Kind int

const (
	ServerError Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
)

// Status возвращает HTTP статус для вида ошибки
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	return http.StatusText(k.Status())
}

// Error ошибка с видом и описанием для клиента.
// Err (если есть) уходит только в логи.
type Error struct {
	Kind        Kind
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Description + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Description
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданного вида
func New(kind Kind, description string) *Error {
	return &Error{Kind: kind, Description: description}
}

// Wrap создаёт ошибку с причиной
func Wrap(kind Kind, description string, err error) *Error {
	return &Error{Kind: kind, Description: description, Err: err}
}

// KindOf возвращает вид ошибки; всё незнакомое считается ServerError
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ServerError
}

// Is сообщает, относится ли err к виду kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
