// Package tui терминальный клиент заметок: живой список, карточка выбранной
// заметки и окно назначения для администратора.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notedesk/internal/notes/app/controller"
	"notedesk/internal/notes/app/subscription"
	"notedesk/internal/notes/app/view"
	"notedesk/internal/notes/domain/entities"
)

const (
	opPin    = "pin"
	opDelete = "delete"

	loadingText = "Loading notes…"
	emptyText   = "No notes"
	helpText    = "↑/↓ select · p pin · d delete · a assign · q quit"
	modalHelp   = "↑/↓ move · space toggle · enter save · esc cancel"
)

// Subscriber живая подписка, которой управляет модель.
type Subscriber interface {
	Subscribe(ctx context.Context, scope subscription.Scope)
	Close()
}

// Deps зависимости модели.
type Deps struct {
	Controller *controller.Controller
	Notes      Subscriber
	Users      Subscriber
	Viewer     entities.Viewer
	Now        func() time.Time
	Styles     Styles
}

// Model модель bubbletea.
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	notes  Subscriber
	users  *modalUsers
	viewer entities.Viewer
	caps   view.Capabilities
	now    func() time.Time
	styles Styles

	notesState NotesMsg
	usersState UsersMsg
	cursor     int
	status     string

	assign      *controller.AssignSession
	assignNote  entities.Note
	modalCursor int

	width  int
	height int
}

// NewModel создает модель. Возможности вычисляются один раз по роли пользователя.
func NewModel(ctx context.Context, deps Deps) Model {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		ctx:        ctx,
		ctrl:       deps.Controller,
		notes:      deps.Notes,
		users:      newModalUsers(deps.Users),
		viewer:     deps.Viewer,
		caps:       view.CapabilitiesFor(deps.Viewer.Role),
		now:        now,
		styles:     deps.Styles,
		notesState: NotesMsg{Items: []entities.Note{}, Loading: deps.Viewer.Authenticated()},
	}
}

// Init открывает подписку на заметки пользователя.
func (m Model) Init() tea.Cmd {
	scope := subscription.ScopeFor(m.viewer)
	return func() tea.Msg {
		m.notes.Subscribe(m.ctx, scope)
		return nil
	}
}

// Update обрабатывает сообщения.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case NotesMsg:
		if msg.Version < m.notesState.Version {
			return m, nil
		}
		m.notesState = msg
		m.syncCursor()
		return m, nil

	case UsersMsg:
		if msg.Version < m.usersState.Version {
			return m, nil
		}
		m.usersState = msg
		m.clampModalCursor()
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %s", msg.op, controller.UserMessage(msg.err))
		} else {
			m.status = ""
		}
		return m, nil

	case assignSavedMsg:
		if msg.err == nil && m.assign != nil && !m.assign.Open() {
			return m, m.closeModal()
		}
		return m, nil

	case tea.KeyMsg:
		if m.assign != nil {
			return m.updateModal(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.notesState.Items

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.selectCursor()

	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
		m.selectCursor()

	case "p":
		note, ok := m.ctrl.Selected(items)
		if !ok || !m.caps.CanPin {
			return m, nil
		}
		return m, m.mutate(opPin, func(ctx context.Context) error {
			return m.ctrl.TogglePin(ctx, note.ID, note.IsPinned)
		})

	case "d":
		note, ok := m.ctrl.Selected(items)
		if !ok || !m.caps.CanDelete {
			return m, nil
		}
		return m, m.mutate(opDelete, func(ctx context.Context) error {
			return m.ctrl.Delete(ctx, note.ID)
		})

	case "a":
		note, ok := m.ctrl.Selected(items)
		if !ok || !m.caps.CanAssign {
			return m, nil
		}
		m.assign = m.ctrl.OpenAssign(note)
		m.assignNote = note
		m.modalCursor = 0
		m.usersState = UsersMsg{Items: []entities.AllowedUser{}, Loading: true, Version: m.usersState.Version}
		return m, m.users.begin(m.ctx)
	}
	return m, nil
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.assign.Cancel()
		return m, m.closeModal()

	case "up", "k":
		if m.modalCursor > 0 {
			m.modalCursor--
		}

	case "down", "j":
		if m.modalCursor < len(m.usersState.Items)-1 {
			m.modalCursor++
		}

	case " ", "space", "x":
		if m.modalCursor < len(m.usersState.Items) {
			m.assign.Toggle(m.usersState.Items[m.modalCursor].Email)
		}

	case "enter":
		if m.assign.Saving() {
			return m, nil
		}
		session := m.assign
		ctx := m.ctx
		return m, func() tea.Msg {
			return assignSavedMsg{err: session.Save(ctx)}
		}
	}
	return m, nil
}

func (m Model) mutate(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{op: op, err: fn(ctx)}
	}
}

// closeModal убирает окно назначения. Подписка на пользователей освобождается командой.
func (m *Model) closeModal() tea.Cmd {
	m.assign = nil
	m.assignNote = entities.Note{}
	m.modalCursor = 0
	return m.users.end()
}

// selectCursor выбирает заметку под курсором.
func (m *Model) selectCursor() {
	items := m.notesState.Items
	if m.cursor >= 0 && m.cursor < len(items) {
		m.ctrl.Select(items[m.cursor].ID)
	}
}

// syncCursor переносит курсор на выбранную заметку после нового снимка.
func (m *Model) syncCursor() {
	items := m.notesState.Items
	if note, ok := m.ctrl.Selected(items); ok {
		for i, n := range items {
			if n.ID == note.ID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) clampModalCursor() {
	if m.modalCursor >= len(m.usersState.Items) {
		m.modalCursor = max(len(m.usersState.Items)-1, 0)
	}
}

// View отрисовывает интерфейс.
func (m Model) View() string {
	if m.assign != nil {
		return m.viewModal()
	}

	header := m.styles.Header.Render("Notes")
	if m.viewer.Authenticated() {
		header += m.styles.Muted.Render(fmt.Sprintf("  %s (%s)", m.viewer.Email, m.viewer.Role))
	}

	list := m.viewList()
	detail := m.viewDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.viewStatus())
}

func (m Model) viewList() string {
	state := m.notesState
	if len(state.Items) == 0 {
		if state.Loading {
			return m.styles.Muted.Render(loadingText)
		}
		return m.styles.Muted.Render(emptyText)
	}

	items := view.NewList(state.Items, m.ctrl.SelectedID(), m.caps, m.now())
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderItem(it))
	}
	return b.String()
}

func (m Model) renderItem(it view.ListItem) string {
	title := it.Title
	if it.Pinned {
		title = m.styles.Pin.Render("★") + " " + title
	}
	if it.AssigneeCount > 0 {
		title += " " + m.styles.Badge.Render(fmt.Sprintf("[%d]", it.AssigneeCount))
	}
	lines := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.styles.Preview.Render(truncate(it.Preview, 40)),
		m.styles.Muted.Render(it.Date),
	)
	if it.Selected {
		return m.styles.Selected.Render(lines)
	}
	return m.styles.Item.Render(lines)
}

func (m Model) viewDetail() string {
	note, ok := entities.FindNote(m.notesState.Items, m.ctrl.SelectedID())
	if !ok {
		return m.styles.Detail.Render(m.styles.Muted.Render("Select a note"))
	}

	preview := note.PlainTextPreview
	if preview == "" {
		preview = view.NoContent
	}
	lines := []string{
		m.styles.Header.Render(note.Title),
		m.styles.Muted.Render(view.FormatNoteDate(note.UpdatedAt, m.now())),
		"",
		preview,
	}
	if m.caps.CanSeeAssigneeCount && note.AssigneeCount() > 0 {
		lines = append(lines, "", m.styles.Badge.Render("Assigned: "+strings.Join(note.AssignedTo, ", ")))
	}
	return m.styles.Detail.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewStatus() string {
	switch {
	case m.notesState.Err != nil:
		return m.styles.Error.Render("Error: " + m.notesState.Err.Error())
	case m.status != "":
		return m.styles.Error.Render(m.status)
	case m.notesState.Loading:
		return m.styles.Status.Render(loadingText)
	}
	return m.styles.Status.Render(fmt.Sprintf("%d notes · %s", len(m.notesState.Items), helpText))
}

func (m Model) viewModal() string {
	modal := view.NewAssignModal(view.AssignInput{
		Note:     m.assignNote,
		Users:    m.usersState.Items,
		Selected: m.assign.Selected(),
		Saving:   m.assign.Saving(),
		SaveErr:  m.assign.Err(),
		UsersErr: m.usersState.Err,
	})

	lines := []string{
		m.styles.Header.Render(modal.Title),
		m.styles.Muted.Render(modal.NoteTitle),
		"",
	}
	if modal.Empty != "" {
		lines = append(lines, m.styles.Muted.Render(modal.Empty))
	}
	for i, row := range modal.Rows {
		check := "[ ]"
		if row.Checked {
			check = "[x]"
		}
		role := m.styles.Muted.Render(string(row.Role))
		if row.IsAdmin {
			role = m.styles.Badge.Render(string(row.Role))
		}
		cursor := "  "
		if i == m.modalCursor {
			cursor = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s", cursor, check, row.Email, role))
	}
	if modal.Error != "" {
		lines = append(lines, "", m.styles.Error.Render(modal.Error))
	}
	lines = append(lines, "",
		m.styles.Muted.Render(modal.Footer)+"   "+view.CancelLabel+" / "+modal.SaveLabel,
		m.styles.Status.Render(modalHelp),
	)
	return m.styles.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
