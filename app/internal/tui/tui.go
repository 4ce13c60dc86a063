// Package tui рисует окно в терминале: строки таблицы слева,
// сгенерированная форма "New Row" справа.
package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"usersgrid/app/internal/model"
	"usersgrid/app/internal/session"
	"usersgrid/app/internal/viewmodel"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	buttonStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	activeStyle = buttonStyle.Background(lipgloss.Color("4"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// rowsMsg несёт копию строк после перезагрузки.
type rowsMsg []model.UserRecord

// submitMsg - результат отправки формы.
type submitMsg struct {
	err error
}

type Model struct {
	session    *session.Session
	fields     []viewmodel.Field
	inputs     []textinput.Model
	table      table.Model
	focus      int
	width      int
	height     int
	submitting bool
	status     string
	err        error
}

// New строит окно для сессии фиксированного размера в ячейках.
func New(sess *session.Session, width, height int) Model {
	m := Model{
		session: sess,
		fields:  sess.Fields(),
		width:   width,
		height:  height,
	}

	for _, f := range m.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Label
		ti.Width = 20
		ti.SetValue(sess.FormValues()[f.Column])
		m.inputs = append(m.inputs, ti)
	}

	tableHeight := height - 6
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "id", Width: 6},
			{Title: "name", Width: 20},
		}),
		table.WithRows(tableRows(sess.Rows())),
		table.WithHeight(tableHeight),
		table.WithFocused(true),
	)

	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func tableRows(users []model.UserRecord) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{strconv.FormatInt(u.ID, 10), u.Name})
	}
	return rows
}

// Run показывает окно, пока пользователь не выйдет.
func Run(sess *session.Session, width, height int) error {
	p := tea.NewProgram(New(sess, width, height), tea.WithAltScreen())
	sess.Subscribe(func(rows []model.UserRecord) {
		p.Send(rowsMsg(rows))
	})
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// buttonIndex - позиция фокуса кнопки отправки.
func (m Model) buttonIndex() int {
	return len(m.inputs)
}

func (m Model) setFocus(i int) (Model, tea.Cmd) {
	n := len(m.inputs) + 1
	m.focus = ((i % n) + n) % n

	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.submitting = true
	m.status = "Saving..."
	m.err = nil

	sess := m.session
	return m, func() tea.Msg {
		return submitMsg{err: sess.Submit(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsMsg:
		m.table.SetRows(tableRows(msg))
		return m, nil

	case submitMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.table.SetRows(tableRows(m.session.Rows()))
		m.status = "Row added"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m.setFocus(m.focus + 1)
		case "shift+tab":
			return m.setFocus(m.focus - 1)
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.focus == m.buttonIndex() {
				return m.submit()
			}
			return m.setFocus(m.focus + 1)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

		if m.focus < len(m.inputs) {
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			if err := m.session.SetField(m.fields[m.focus].Column, m.inputs[m.focus].Value()); err != nil {
				m.err = err
			}
			return m, cmd
		}
		return m, nil
	}

	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var form strings.Builder
	form.WriteString(titleStyle.Render("New Row"))
	form.WriteString("\n\n")
	for i, f := range m.fields {
		form.WriteString(labelStyle.Render(f.Label))
		form.WriteString("\n")
		form.WriteString(m.inputs[i].View())
		form.WriteString("\n\n")
	}

	button := buttonStyle
	if m.focus == m.buttonIndex() {
		button = activeStyle
	}
	form.WriteString(button.Render("Add to database"))

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.table.View()),
		panelStyle.Render(form.String()),
	)

	footer := statusStyle.Render(m.status)
	if m.err != nil {
		footer = errorStyle.Render("Error: " + m.err.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).MaxWidth(m.width).
		Height(m.height).MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, footer))
}
