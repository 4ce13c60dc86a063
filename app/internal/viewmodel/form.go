// Package viewmodel хранит состояние для отображения: сгенерированную
// форму и наблюдаемый список строк.
package viewmodel

import (
	"sync"

	"github.com/pkg/errors"

	"usersgrid/app/internal/model"
)

// Field - одно текстовое поле формы.
type Field struct {
	Column string
	Label  string
}

// Form хранит по одной строке на каждый столбец.
type Form struct {
	mu     sync.Mutex
	fields []Field
	values map[string]string
}

// NewForm создаёт по пустому текстовому полю на столбец в их порядке.
func NewForm(columns []model.ColumnMeta) *Form {
	f := &Form{
		fields: make([]Field, 0, len(columns)),
		values: make(map[string]string, len(columns)),
	}
	for _, c := range columns {
		f.fields = append(f.fields, Field{Column: c.ColumnName, Label: c.DisplayName})
		f.values[c.ColumnName] = ""
	}
	return f
}

func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// Set заменяет значение одного поля.
func (f *Form) Set(column, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[column]; !ok {
		return errors.Errorf("form has no field %q", column)
	}
	f.values[column] = value
	return nil
}

func (f *Form) Get(column string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[column]
}

// Values возвращает копию текущих значений.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
