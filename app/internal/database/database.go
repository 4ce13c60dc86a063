package database

import (
	"context"
	"database/sql"
	"embed"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"usersgrid/app/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// диалект goose для каждого драйвера database/sql
var dialects = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Storage хранит единственное соединение процесса.
type Storage struct {
	DB     *sqlx.DB
	Driver string
}

// New открывает БД и проверяет, что она отвечает. В пуле одно
// соединение: in-memory sqlite живёт столько же, сколько соединение.
func New(ctx context.Context, driver, dsn string) (*Storage, error) {
	if _, ok := dialects[driver]; !ok {
		return nil, errors.Wrapf(model.ErrConnection, "unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(model.ErrConnection, "opening database connection: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(model.ErrConnection, "pinging %s: %v", driver, err)
	}

	logrus.WithField("driver", driver).Debug("Connected to DB")
	return &Storage{DB: db, Driver: driver}, nil
}

// Stop закрывает соединение.
func (s *Storage) Stop() error {
	return s.DB.Close()
}

// ApplyMigrations создаёт и заполняет таблицу users из встроенных миграций.
func ApplyMigrations(s *Storage) error {
	if s == nil || s.DB == nil {
		return errors.New("ApplyMigrations: invalid storage provided")
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(logrus.StandardLogger())

	if err := goose.SetDialect(dialects[s.Driver]); err != nil {
		return errors.Wrap(err, "goose set dialect")
	}
	if err := goose.Up(s.DB.DB, "migrations"); err != nil {
		return errors.Wrapf(model.ErrConnection, "failed to run migrations: %v", err)
	}
	return nil
}

// ValidateTable пропускает только голый SQL-идентификатор: имя таблицы
// подставляется в текст запроса.
func ValidateTable(table string) error {
	if !identifier.MatchString(table) {
		return errors.Wrapf(model.ErrConnection, "invalid table name %q", table)
	}
	return nil
}

// Columns описывает все столбцы таблицы в порядке их следования
// по метаданным запроса, который не возвращает ни одной строки.
func (s *Storage) Columns(ctx context.Context, table string) ([]model.ColumnMeta, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	types, err := s.columnTypes(ctx, table)
	if err != nil {
		return nil, errors.Wrapf(model.ErrConnection, "reading metadata of %s: %v", table, err)
	}

	var notNull map[string]bool
	if s.Driver == "sqlite" {
		notNull, err = s.sqliteNotNull(ctx, table)
		if err != nil {
			return nil, errors.Wrapf(model.ErrConnection, "reading table_info of %s: %v", table, err)
		}
	}

	columns := make([]model.ColumnMeta, 0, len(types))
	for _, ct := range types {
		required, known := notNull[ct.Name()]
		if !known {
			nullable, ok := ct.Nullable()
			required = ok && !nullable
		}
		columns = append(columns, model.ColumnMeta{
			ColumnName:   ct.Name(),
			DisplayName:  ct.Name(),
			Type:         model.ParseSQLType(ct.DatabaseTypeName()),
			DatabaseType: model.NormalizeTypeName(ct.DatabaseTypeName()),
			Required:     required,
		})
	}
	return columns, nil
}

// columnTypes закрывает курсор до возврата: соединение в пуле одно.
func (s *Storage) columnTypes(ctx context.Context, table string) ([]*sql.ColumnType, error) {
	rows, err := s.DB.QueryxContext(ctx, "SELECT * FROM "+table+" LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	return types, rows.Err()
}

// sqliteNotNull читает NOT NULL из PRAGMA table_info, так как драйвер
// sqlite не сообщает nullability. INTEGER PRIMARY KEY это rowid и
// NULL не бывает.
func (s *Storage) sqliteNotNull(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.DB.QueryxContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notNull := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			coltype   string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &coltype, &notnull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		notNull[name] = notnull == 1 ||
			(pk > 0 && model.ParseSQLType(coltype) == model.TypeInteger)
	}
	return notNull, rows.Err()
}

// LoadUsers возвращает все строки таблицы в порядке, в котором их
// отдаёт движок. id и name сопоставляются по имени, прочие столбцы
// пропускаются.
func (s *Storage) LoadUsers(ctx context.Context, table string) ([]model.UserRecord, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	users := []model.UserRecord{}
	if err := s.DB.Unsafe().SelectContext(ctx, &users, "SELECT * FROM "+table); err != nil {
		return nil, errors.Wrapf(model.ErrDatabase, "loading %s: %v", table, err)
	}
	return users, nil
}

// Insert выполняет параметризованный запрос с плейсхолдерами '?'.
func (s *Storage) Insert(ctx context.Context, query string, args []any) error {
	if _, err := s.DB.ExecContext(ctx, s.DB.Rebind(query), args...); err != nil {
		return errors.Wrapf(model.ErrDatabase, "%v", err)
	}
	return nil
}
