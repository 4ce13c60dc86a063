// Package binding превращает значения формы в аргументы
// параметризованного INSERT.
package binding

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/model"
)

// Binder переводит текст поля формы в значение для плейсхолдера.
type Binder struct {
	Parse func(value string) (any, error)
}

var binders = map[model.SQLType]Binder{
	model.TypeString: {
		Parse: func(value string) (any, error) {
			return value, nil
		},
	},
	model.TypeInteger: {
		Parse: func(value string) (any, error) {
			return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		},
	},
}

// Lookup возвращает Binder для типа столбца.
func Lookup(t model.SQLType) (Binder, bool) {
	b, ok := binders[t]
	return b, ok
}

// BuildInsert перечисляет все столбцы по порядку, по плейсхолдеру на каждый.
func BuildInsert(table string, columns []model.ColumnMeta) string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.ColumnName)
	}

	return "INSERT INTO " + table + "(" + strings.Join(names, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
}

// Bind разбирает values[column] для каждого столбца по порядку.
// Отсутствующий ключ даёт пустую строку.
func Bind(columns []model.ColumnMeta, values map[string]string) ([]any, error) {
	args := make([]any, 0, len(columns))
	for _, c := range columns {
		b, ok := Lookup(c.Type)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"column": c.ColumnName,
				"type":   c.DatabaseType,
			}).Warn("Unhandled column type")
			return nil, errors.Wrapf(model.ErrUnhandledType,
				"column %s has type %s", c.ColumnName, c.DatabaseType)
		}

		arg, err := b.Parse(values[c.ColumnName])
		if err != nil {
			return nil, errors.Wrapf(model.ErrFormat,
				"column %s expects %s, got %q", c.ColumnName, c.Type, values[c.ColumnName])
		}
		args = append(args, arg)
	}
	return args, nil
}
