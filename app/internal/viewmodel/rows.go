package viewmodel

import (
	"sync"

	"usersgrid/app/internal/model"
)

// RowList - упорядоченные строки на экране. Заменяется только целиком,
// подписчики получают каждую замену.
type RowList struct {
	mu          sync.RWMutex
	rows        []model.UserRecord
	subscribers []func([]model.UserRecord)
}

func NewRowList() *RowList {
	return &RowList{}
}

// Subscribe регистрирует fn, который получает копию строк после
// каждого Replace.
func (l *RowList) Subscribe(fn func([]model.UserRecord)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// Replace очищает список и заполняет его rows.
func (l *RowList) Replace(rows []model.UserRecord) {
	l.mu.Lock()
	l.rows = append(l.rows[:0:0], rows...)
	subscribers := append([]func([]model.UserRecord){}, l.subscribers...)
	l.mu.Unlock()

	for _, fn := range subscribers {
		fn(append([]model.UserRecord(nil), rows...))
	}
}

func (l *RowList) Rows() []model.UserRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.UserRecord(nil), l.rows...)
}

func (l *RowList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}
