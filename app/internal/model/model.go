package model

import "strings"

// SQLType - закрытый набор типов столбцов, которые форма умеет привязывать.
type SQLType int

const (
	TypeUnknown SQLType = iota
	TypeInteger
	TypeString
)

func (t SQLType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeString:
		return "string"
	}
	return "unknown"
}

func (t SQLType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

var declaredTypes = map[string]SQLType{
	"INT":               TypeInteger,
	"INTEGER":           TypeInteger,
	"INT2":              TypeInteger,
	"INT4":              TypeInteger,
	"INT8":              TypeInteger,
	"SMALLINT":          TypeInteger,
	"BIGINT":            TypeInteger,
	"TINYINT":           TypeInteger,
	"MEDIUMINT":         TypeInteger,
	"VARCHAR":           TypeString,
	"CHAR":              TypeString,
	"TEXT":              TypeString,
	"NVARCHAR":          TypeString,
	"NCHAR":             TypeString,
	"CHARACTER":         TypeString,
	"CHARACTER VARYING": TypeString,
	"CLOB":              TypeString,
	"STRING":            TypeString,
}

// NormalizeTypeName приводит объявленный тип к верхнему регистру и
// отбрасывает размер: "varchar(255)" -> "VARCHAR".
func NormalizeTypeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name
}

// ParseSQLType сопоставляет имя типа от драйвера с SQLType.
func ParseSQLType(name string) SQLType {
	if t, ok := declaredTypes[NormalizeTypeName(name)]; ok {
		return t
	}
	return TypeUnknown
}

// ColumnMeta описывает один столбец таблицы.
type ColumnMeta struct {
	ColumnName   string  `json:"column_name"`
	DisplayName  string  `json:"display_name"`
	Type         SQLType `json:"type"`
	DatabaseType string  `json:"database_type"`
	Required     bool    `json:"required"`
}

// UserRecord - строка таблицы users.
type UserRecord struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
