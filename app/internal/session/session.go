// Package session владеет состоянием окна: столбцами, формой, строками
// на экране и единственным путём к БД.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/binding"
	"usersgrid/app/internal/model"
	"usersgrid/app/internal/viewmodel"
)

// Store - часть database.Storage, нужная сессии.
type Store interface {
	Columns(ctx context.Context, table string) ([]model.ColumnMeta, error)
	LoadUsers(ctx context.Context, table string) ([]model.UserRecord, error)
	Insert(ctx context.Context, query string, args []any) error
}

// Recorder замеряет операции с БД.
type Recorder interface {
	ObserveLoad(d time.Duration, rows int, err error)
	ObserveInsert(d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(time.Duration, int, error) {}
func (nopRecorder) ObserveInsert(time.Duration, error)    {}

// Session выполняет операции с БД строго по одной под мьютексом.
type Session struct {
	mu       sync.Mutex
	store    Store
	table    string
	columns  []model.ColumnMeta
	insert   string
	form     *viewmodel.Form
	rows     *viewmodel.RowList
	recorder Recorder
}

type Option func(*Session)

func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New читает столбцы таблицы, строит форму и загружает первые строки.
// Любая ошибка здесь - ошибка запуска.
func New(ctx context.Context, store Store, table string, opts ...Option) (*Session, error) {
	s := &Session{
		store:    store,
		table:    table,
		rows:     viewmodel.NewRowList(),
		recorder: nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}

	columns, err := store.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Wrapf(model.ErrConnection, "table %s has no columns", table)
	}
	s.columns = columns
	s.insert = binding.BuildInsert(table, columns)
	s.form = viewmodel.NewForm(columns)

	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"table":   table,
		"columns": len(columns),
		"rows":    s.rows.Len(),
	}).Info("Session ready")
	return s, nil
}

func (s *Session) Table() string {
	return s.table
}

// Columns возвращает описания столбцов.
func (s *Session) Columns() []model.ColumnMeta {
	return append([]model.ColumnMeta(nil), s.columns...)
}

func (s *Session) Fields() []viewmodel.Field {
	return s.form.Fields()
}

// SetField сохраняет правку одного поля формы.
func (s *Session) SetField(column, value string) error {
	return s.form.Set(column, value)
}

func (s *Session) FormValues() map[string]string {
	return s.form.Values()
}

func (s *Session) Rows() []model.UserRecord {
	return s.rows.Rows()
}

// Subscribe подписывает fn на список строк.
func (s *Session) Subscribe(fn func([]model.UserRecord)) {
	s.rows.Subscribe(fn)
}

// Load заново читает таблицу и заменяет строки.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Session) load(ctx context.Context) error {
	start := time.Now()
	users, err := s.store.LoadUsers(ctx, s.table)
	s.recorder.ObserveLoad(time.Since(start), len(users), err)
	if err != nil {
		return err
	}

	s.rows.Replace(users)
	return nil
}

// Submit добавляет строку из текущих значений формы.
func (s *Session) Submit(ctx context.Context) error {
	return s.Insert(ctx, s.form.Values())
}

// Insert привязывает значения по типам столбцов, выполняет INSERT и
// перезагружает строки. При ошибке строки не меняются.
func (s *Session) Insert(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args, err := binding.Bind(s.columns, values)
	if err != nil {
		s.recorder.ObserveInsert(0, err)
		return err
	}

	start := time.Now()
	err = s.store.Insert(ctx, s.insert, args)
	s.recorder.ObserveInsert(time.Since(start), err)
	if err != nil {
		logrus.WithField("table", s.table).WithError(err).Warn("Insert failed")
		return err
	}

	return s.load(ctx)
}
