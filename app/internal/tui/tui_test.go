package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"usersgrid/app/internal/database"
	"usersgrid/app/internal/model"
	"usersgrid/app/internal/session"
)

type TuiTestSuite struct {
	suite.Suite
	storage *database.Storage
	session *session.Session
	model   Model
}

func (s *TuiTestSuite) SetupTest() {
	ctx := context.Background()

	storage, err := database.New(ctx, "sqlite", ":memory:")
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.ApplyMigrations(storage))
	s.storage = storage

	s.session, err = session.New(ctx, storage, "users")
	require.NoError(s.T(), err)
	s.model = New(s.session, 80, 24)
}

func (s *TuiTestSuite) TearDownTest() {
	s.storage.Stop()
}

func (s *TuiTestSuite) send(msg tea.Msg) tea.Cmd {
	next, cmd := s.model.Update(msg)
	s.model = next.(Model)
	return cmd
}

func (s *TuiTestSuite) typeText(text string) {
	s.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func (s *TuiTestSuite) key(t tea.KeyType) tea.Cmd {
	return s.send(tea.KeyMsg{Type: t})
}

// submit presses the button and feeds the command's result back.
func (s *TuiTestSuite) submit() {
	for s.model.focus != s.model.buttonIndex() {
		s.key(tea.KeyTab)
	}
	cmd := s.key(tea.KeyEnter)
	require.NotNil(s.T(), cmd)
	s.send(cmd())
}

func (s *TuiTestSuite) TestOneInputPerColumn() {
	require.Len(s.T(), s.model.inputs, 2)
	assert.Equal(s.T(), "id", s.model.fields[0].Column)
	assert.Equal(s.T(), "name", s.model.fields[1].Column)
	assert.Len(s.T(), s.model.table.Rows(), 2)
}

func (s *TuiTestSuite) TestTypingUpdatesForm() {
	s.typeText("3")
	s.key(tea.KeyTab)
	s.typeText("Test")

	assert.Equal(s.T(), map[string]string{"id": "3", "name": "Test"}, s.session.FormValues())
}

func (s *TuiTestSuite) TestFocusWraps() {
	assert.Equal(s.T(), 0, s.model.focus)
	s.key(tea.KeyShiftTab)
	assert.Equal(s.T(), s.model.buttonIndex(), s.model.focus)
	s.key(tea.KeyTab)
	assert.Equal(s.T(), 0, s.model.focus)
}

func (s *TuiTestSuite) TestSubmitAddsRow() {
	s.typeText("3")
	s.key(tea.KeyTab)
	s.typeText("Test")
	s.submit()

	assert.NoError(s.T(), s.model.err)
	assert.Equal(s.T(), "Row added", s.model.status)
	require.Len(s.T(), s.model.table.Rows(), 3)
	assert.Equal(s.T(), "3", s.model.table.Rows()[2][0])
	assert.Equal(s.T(), "Test", s.model.table.Rows()[2][1])
	assert.Contains(s.T(), s.model.View(), "Test")
}

func (s *TuiTestSuite) TestSubmitErrorKeepsSession() {
	s.typeText("abc")
	s.submit()

	assert.True(s.T(), errors.Is(s.model.err, model.ErrFormat))
	assert.Len(s.T(), s.model.table.Rows(), 2)
	assert.Contains(s.T(), s.model.View(), "Error:")

	// A corrected value goes through.
	s.model, _ = s.model.setFocus(0)
	s.key(tea.KeyBackspace)
	s.key(tea.KeyBackspace)
	s.key(tea.KeyBackspace)
	s.typeText("5")
	s.submit()
	assert.NoError(s.T(), s.model.err)
	assert.Len(s.T(), s.model.table.Rows(), 3)
}

func (s *TuiTestSuite) TestCtrlSSubmits() {
	s.typeText("4")
	cmd := s.key(tea.KeyCtrlS)
	require.NotNil(s.T(), cmd)
	assert.True(s.T(), s.model.submitting)
	assert.Nil(s.T(), s.key(tea.KeyCtrlS))
	s.send(cmd())
	assert.False(s.T(), s.model.submitting)
}

func (s *TuiTestSuite) TestRowsMsgRefreshesGrid() {
	s.send(rowsMsg([]model.UserRecord{{ID: 9, Name: "Nine"}}))
	require.Len(s.T(), s.model.table.Rows(), 1)
	assert.Equal(s.T(), "Nine", s.model.table.Rows()[0][1])
}

func (s *TuiTestSuite) TestQuit() {
	cmd := s.key(tea.KeyEsc)
	require.NotNil(s.T(), cmd)
	assert.Equal(s.T(), tea.Quit(), cmd())
}

func TestTui(t *testing.T) {
	suite.Run(t, &TuiTestSuite{})
}
