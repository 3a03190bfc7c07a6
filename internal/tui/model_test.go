package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/activityboard/internal/api"
	"github.com/existflow/activityboard/internal/apitest"
	"github.com/existflow/activityboard/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, opts Options) (*apitest.Server, *board.Board, Model) {
	t.Helper()
	srv, url := apitest.Start(t, "employee", "employee_password")
	client := api.NewClient(api.Config{BaseURL: url, Username: "employee", Password: "employee_password"})
	b := board.New(client)
	m := NewModel(context.Background(), b, opts)
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return srv, b, m
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, k string) (Model, tea.Cmd) {
	switch k {
	case "enter":
		return send(m, tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return send(m, tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return send(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// finish runs a board action command and feeds its result back
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok, "expected a board action, got %T", msg)
	m, _ = send(m, done)
	return m
}

func TestModeFollowsBoardDialogs(t *testing.T) {
	_, b, m := newTestModel(t, Options{})

	b.OpenCreate()
	m.refresh()
	assert.Equal(t, ModeCreate, m.mode)

	b.ConfirmDelete(7)
	m.refresh()
	assert.Equal(t, ModeConfirm, m.mode)

	b.CancelConfirmation()
	b.CloseCreate()
	m.refresh()
	assert.Equal(t, ModeNormal, m.mode)
}

func TestAddActivityFromKeyboard(t *testing.T) {
	srv, _, m := newTestModel(t, Options{})

	m, _ = press(m, "a")
	require.Equal(t, ModeCreate, m.mode)
	m, _ = press(m, "water the plants")
	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, ModeNormal, m.mode)
	require.Len(t, m.state.Unfinished, 1)
	assert.Equal(t, "water the plants", m.state.Unfinished[0].Description)
	assert.Equal(t, "Activity added", m.message)

	_, ok := srv.Get(m.state.Unfinished[0].ID)
	assert.True(t, ok)
}

func TestEmptyDraftKeepsDialogOpen(t *testing.T) {
	srv, _, m := newTestModel(t, Options{})

	m, _ = press(m, "a")
	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, ModeCreate, m.mode)
	assert.Equal(t, board.MsgEmptyCreate, m.state.Error)
	assert.Empty(t, srv.Requests())
}

func TestFinishAndReopenFromKeyboard(t *testing.T) {
	srv, b, m := newTestModel(t, Options{})
	a := srv.Seed("stretch", false)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	m, cmd := press(m, "x")
	m = finish(t, m, cmd)
	assert.Empty(t, m.state.Unfinished)
	require.Len(t, m.state.Finished, 1)
	assert.Equal(t, a.ID, m.state.Finished[0].ID)

	m, _ = press(m, "tab")
	m, cmd = press(m, "enter")
	m = finish(t, m, cmd)
	assert.Empty(t, m.state.Finished)
	require.Len(t, m.state.Unfinished, 1)
	assert.Equal(t, "Activity reopened", m.message)
}

func TestDeleteAsksFirst(t *testing.T) {
	srv, b, m := newTestModel(t, Options{ConfirmDelete: true})
	a := srv.Seed("old chore", false)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	m, cmd := press(m, "d")
	assert.Nil(t, cmd)
	require.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, board.PendingAction{Kind: board.ActionDelete, ID: a.ID}, m.state.Pending)
	assert.Contains(t, m.View(), "Delete activity")

	m, cmd = press(m, "y")
	m = finish(t, m, cmd)
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.state.Unfinished)
	_, ok := srv.Get(a.ID)
	assert.False(t, ok)
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	srv, b, m := newTestModel(t, Options{})
	a := srv.Seed("gone", false)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	m, cmd := press(m, "d")
	m = finish(t, m, cmd)
	assert.Empty(t, m.state.Unfinished)
	_, ok := srv.Get(a.ID)
	assert.False(t, ok)
}

func TestDecliningEditConfirmationReturnsToEditor(t *testing.T) {
	srv, b, m := newTestModel(t, Options{ConfirmEdit: true})
	srv.Seed("draft wording", false)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	m, _ = press(m, "e")
	require.Equal(t, ModeEdit, m.mode)
	assert.Equal(t, "draft wording", m.input.Value())

	m, _ = press(m, "!")
	m, cmd := press(m, "enter")
	assert.Nil(t, cmd)
	require.Equal(t, ModeConfirm, m.mode)

	m, _ = press(m, "n")
	assert.Equal(t, ModeEdit, m.mode)
	require.NotNil(t, m.state.EditTarget)
	assert.Equal(t, "draft wording!", m.state.EditTarget.Description)
	assert.Equal(t, "draft wording", m.state.Unfinished[0].Description)
}

func TestConfirmedEditIsSaved(t *testing.T) {
	srv, b, m := newTestModel(t, Options{ConfirmEdit: true})
	a := srv.Seed("typo", false)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	m, _ = press(m, "e")
	m, _ = press(m, "s")
	m, _ = press(m, "enter")
	m, cmd := press(m, "y")
	m = finish(t, m, cmd)

	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "typos", m.state.Unfinished[0].Description)
	stored, _ := srv.Get(a.ID)
	assert.Equal(t, "typos", stored.Description)
}

func TestLookupByID(t *testing.T) {
	srv, _, m := newTestModel(t, Options{})
	a := srv.Seed("find me", true)

	m, _ = press(m, "g")
	require.Equal(t, ModeLookup, m.mode)
	m, _ = press(m, "1")
	m, cmd := press(m, "enter")
	m = finish(t, m, cmd)

	require.NotNil(t, m.state.Lookup)
	assert.Equal(t, a.ID, m.state.Lookup.ID)
	assert.Contains(t, m.View(), "find me")

	m, _ = press(m, "esc")
	assert.Nil(t, m.state.Lookup)
}

func TestLookupRejectsNonNumericID(t *testing.T) {
	_, _, m := newTestModel(t, Options{})

	m, _ = press(m, "g")
	m, _ = press(m, "abc")
	m, cmd := press(m, "enter")

	assert.Nil(t, cmd)
	assert.Equal(t, ModeNormal, m.mode)
	assert.Contains(t, m.message, "Not an id")
}

func TestViewShowsTitleAndError(t *testing.T) {
	srv, b, m := newTestModel(t, Options{})
	srv.FailNext("GET", "/unfinished", 500)

	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	view := m.View()
	assert.Contains(t, view, Title)
	assert.Contains(t, view, board.MsgLoad)
	assert.Contains(t, view, "Pending (0)")
}

func TestCursorStaysInRange(t *testing.T) {
	srv, b, m := newTestModel(t, Options{})
	srv.Seed("one", false)
	two := srv.Seed("two", false)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})

	m, _ = press(m, "j")
	m, _ = press(m, "j")
	assert.Equal(t, 1, m.cursor)

	srv.Remove(two.ID)
	b.Load(context.Background())
	m, _ = send(m, boardChangedMsg{})
	assert.Equal(t, 0, m.cursor)
}
