package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"usersgrid/app/internal/model"
)

type StorageTestSuite struct {
	suite.Suite
	ctx     context.Context
	storage *Storage
}

func (s *StorageTestSuite) SetupTest() {
	s.ctx = context.Background()

	storage, err := New(s.ctx, "sqlite", ":memory:")
	require.NoError(s.T(), err)
	require.NoError(s.T(), ApplyMigrations(storage))
	s.storage = storage
}

func (s *StorageTestSuite) TearDownTest() {
	if s.storage != nil {
		s.storage.Stop()
	}
}

func (s *StorageTestSuite) TestColumns() {
	columns, err := s.storage.Columns(s.ctx, "users")
	require.NoError(s.T(), err)
	require.Len(s.T(), columns, 2)

	assert.Equal(s.T(), "id", columns[0].ColumnName)
	assert.Equal(s.T(), "id", columns[0].DisplayName)
	assert.Equal(s.T(), model.TypeInteger, columns[0].Type)

	assert.Equal(s.T(), "name", columns[1].ColumnName)
	assert.Equal(s.T(), model.TypeString, columns[1].Type)
	assert.Equal(s.T(), "VARCHAR", columns[1].DatabaseType)
}

func (s *StorageTestSuite) TestColumnsRequired() {
	_, err := s.storage.DB.Exec(`CREATE TABLE accounts(
		id INTEGER PRIMARY KEY,
		login VARCHAR(64) NOT NULL,
		note TEXT)`)
	require.NoError(s.T(), err)

	columns, err := s.storage.Columns(s.ctx, "accounts")
	require.NoError(s.T(), err)
	require.Len(s.T(), columns, 3)
	assert.True(s.T(), columns[0].Required)
	assert.True(s.T(), columns[1].Required)
	assert.False(s.T(), columns[2].Required)

	users, err := s.storage.Columns(s.ctx, "users")
	require.NoError(s.T(), err)
	assert.True(s.T(), users[0].Required)
	assert.False(s.T(), users[1].Required)
}

func (s *StorageTestSuite) TestColumnsMissingTable() {
	_, err := s.storage.Columns(s.ctx, "nope")
	assert.True(s.T(), errors.Is(err, model.ErrConnection), "got %v", err)
}

func (s *StorageTestSuite) TestColumnsRejectsBadIdentifier() {
	_, err := s.storage.Columns(s.ctx, "users; DROP TABLE users")
	assert.True(s.T(), errors.Is(err, model.ErrConnection), "got %v", err)

	users, err := s.storage.LoadUsers(s.ctx, "users")
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 2)
}

func (s *StorageTestSuite) TestLoadUsersSeeded() {
	users, err := s.storage.LoadUsers(s.ctx, "users")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []model.UserRecord{
		{ID: 1, Name: "Hello"},
		{ID: 2, Name: "World"},
	}, users)
}

func (s *StorageTestSuite) TestLoadUsersIsIdempotent() {
	first, err := s.storage.LoadUsers(s.ctx, "users")
	require.NoError(s.T(), err)
	second, err := s.storage.LoadUsers(s.ctx, "users")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first, second)
}

func (s *StorageTestSuite) TestLoadUsersIgnoresExtraColumns() {
	_, err := s.storage.DB.Exec(`CREATE TABLE people(
		id INTEGER PRIMARY KEY,
		name VARCHAR(255),
		email VARCHAR(255))`)
	require.NoError(s.T(), err)
	_, err = s.storage.DB.Exec(`INSERT INTO people(id, name, email) VALUES (1, 'A', 'a@x')`)
	require.NoError(s.T(), err)

	users, err := s.storage.LoadUsers(s.ctx, "people")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []model.UserRecord{{ID: 1, Name: "A"}}, users)
}

func (s *StorageTestSuite) TestInsert() {
	err := s.storage.Insert(s.ctx,
		"INSERT INTO users(id, name) VALUES (?, ?)", []any{int64(3), "Test"})
	require.NoError(s.T(), err)

	users, err := s.storage.LoadUsers(s.ctx, "users")
	require.NoError(s.T(), err)
	assert.Contains(s.T(), users, model.UserRecord{ID: 3, Name: "Test"})
}

func (s *StorageTestSuite) TestInsertDuplicateKey() {
	err := s.storage.Insert(s.ctx,
		"INSERT INTO users(id, name) VALUES (?, ?)", []any{int64(1), "Again"})
	assert.True(s.T(), errors.Is(err, model.ErrDatabase), "got %v", err)

	users, err := s.storage.LoadUsers(s.ctx, "users")
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 2)
}

func TestStorage(t *testing.T) {
	suite.Run(t, &StorageTestSuite{})
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), "oracle", "whatever")
	assert.True(t, errors.Is(err, model.ErrConnection))
}
