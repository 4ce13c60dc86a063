package model

import "github.com/pkg/errors"

var (
	// ErrConnection: БД недоступна или таблицы нет. При запуске фатальна.
	ErrConnection = errors.New("connection error")

	// ErrFormat: значение поля не разбирается под тип столбца.
	ErrFormat = errors.New("format error")

	// ErrDatabase: БД отвергла запрос, например дубликат первичного ключа.
	ErrDatabase = errors.New("database error")

	// ErrUnhandledType: тип столбца форма привязать не умеет.
	ErrUnhandledType = errors.New("unhandled column type")
)
