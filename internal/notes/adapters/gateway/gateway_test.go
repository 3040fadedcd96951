package gateway_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"notedesk/internal/notes/adapters/gateway"
	"notedesk/internal/notes/adapters/redis"
	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/repositories"
)

var errQuery = errors.New("permission denied")

// memNotes хранит заметки в памяти и фильтрует их так же, как SQL-запрос.
type memNotes struct {
	mu      sync.Mutex
	notes   []entities.Note
	listErr error
	calls   []string
}

func (m *memNotes) Create(_ context.Context, note *entities.Note) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, *note)
	return note.ID, nil
}

func (m *memNotes) ListAll(context.Context) ([]entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "all")
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.notes), nil
}

func (m *memNotes) ListAssignedTo(_ context.Context, email string) ([]entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "assigned:"+email)
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]entities.Note, 0)
	for _, n := range m.notes {
		if slices.Contains(n.AssignedTo, email) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotes) update(id string, fn func(n *entities.Note)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notes {
		if m.notes[i].ID == id {
			fn(&m.notes[i])
			return nil
		}
	}
	return repositories.ErrNoteNotFound
}

func (m *memNotes) SetPinned(_ context.Context, id string, pinned bool) error {
	return m.update(id, func(n *entities.Note) { n.IsPinned = pinned })
}

func (m *memNotes) SetAssignees(_ context.Context, id string, emails []string) error {
	return m.update(id, func(n *entities.Note) { n.AssignedTo = slices.Clone(emails) })
}

func (m *memNotes) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notes {
		if m.notes[i].ID == id {
			m.notes = slices.Delete(m.notes, i, i+1)
			return nil
		}
	}
	return repositories.ErrNoteNotFound
}

func (m *memNotes) lastCall() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

type memUsers struct {
	mu    sync.Mutex
	users []entities.AllowedUser
}

func (m *memUsers) Create(_ context.Context, u *entities.AllowedUser) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, *u)
	return u.ID, nil
}

func (m *memUsers) ListAllowed(context.Context) ([]entities.AllowedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users), nil
}

type fixture struct {
	gw    *gateway.Gateway
	notes *memNotes
	users *memUsers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	notes := &memNotes{notes: []entities.Note{
		{ID: "n1", Title: "For A", AssignedTo: []string{"a@x.com", "b@x.com"}},
		{ID: "n2", Title: "For B", AssignedTo: []string{"b@x.com"}},
		{ID: "n3", Title: "Nobody"},
	}}
	users := &memUsers{users: []entities.AllowedUser{{ID: "u1", Email: "a@x.com", Role: entities.RoleAdmin}}}

	gw := gateway.New(notes, users, redis.NewNotifier(client, ""))
	return &fixture{gw: gw, notes: notes, users: users}
}

// recorder собирает снимки и ошибки подписки.
type recorder[T any] struct {
	snapshots chan []T
	errs      chan error
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{snapshots: make(chan []T, 16), errs: make(chan error, 4)}
}

func (r *recorder[T]) onNext(items []T) { r.snapshots <- items }
func (r *recorder[T]) onError(err error) { r.errs <- err }

func (r *recorder[T]) next(t *testing.T) []T {
	t.Helper()
	select {
	case s := <-r.snapshots:
		return s
	case err := <-r.errs:
		t.Fatalf("unexpected subscription error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}
	return nil
}

func ids(notes []entities.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestSubscribeToNotesScoping(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		privileged bool
		wantIDs    []string
		wantCall   string
	}{
		{name: "privileged sees everything", email: "a@x.com", privileged: true, wantIDs: []string{"n1", "n2", "n3"}, wantCall: "all"},
		{name: "member sees assigned only", email: "A@X.com", wantIDs: []string{"n1"}, wantCall: "assigned:a@x.com"},
		{name: "other member", email: "b@x.com", wantIDs: []string{"n1", "n2"}, wantCall: "assigned:b@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := newRecorder[entities.Note]()

			unsubscribe, err := f.gw.SubscribeToNotes(context.Background(), tt.email, tt.privileged, rec.onNext, rec.onError)
			require.NoError(t, err)
			t.Cleanup(unsubscribe)

			assert.Equal(t, tt.wantIDs, ids(rec.next(t)))
			assert.Equal(t, tt.wantCall, f.notes.lastCall(), "filtering must be delegated to the query")
		})
	}
}

func TestSubscribeToNotesRequiresViewer(t *testing.T) {
	f := newFixture(t)
	rec := newRecorder[entities.Note]()

	unsubscribe, err := f.gw.SubscribeToNotes(context.Background(), "  ", false, rec.onNext, rec.onError)

	require.ErrorIs(t, err, gateway.ErrViewerRequired)
	assert.Nil(t, unsubscribe)
	assert.Empty(t, f.notes.lastCall(), "no query must run without a viewer")
}

func TestAssignNoteToUsersReplacesAndReemits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := newRecorder[entities.Note]()

	unsubscribe, err := f.gw.SubscribeToNotes(ctx, "", true, rec.onNext, rec.onError)
	require.NoError(t, err)
	t.Cleanup(unsubscribe)
	rec.next(t)

	require.NoError(t, f.gw.AssignNoteToUsers(ctx, "n1", []string{"B@x.com"}))

	snapshot := rec.next(t)
	n1, ok := entities.FindNote(snapshot, "n1")
	require.True(t, ok)
	assert.Equal(t, []string{"b@x.com"}, n1.AssignedTo)
}

func TestAssignNoteToUsersValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.gw.AssignNoteToUsers(ctx, "n1", []string{"a@x.com", "not-an-email"})
	require.ErrorIs(t, err, gateway.ErrInvalidEmail)
	assert.Equal(t, "failed to assign note: invalid email: not-an-email", err.Error())

	n1, _ := entities.FindNote(f.notes.notes, "n1")
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, n1.AssignedTo, "rejected assignment must not write")

	err = f.gw.AssignNoteToUsers(ctx, "", []string{"a@x.com"})
	require.ErrorIs(t, err, gateway.ErrNoteIDRequired)

	err = f.gw.AssignNoteToUsers(ctx, "missing", nil)
	require.ErrorIs(t, err, repositories.ErrNoteNotFound)
	assert.Equal(t, repositories.ErrNoteNotFound.Error(), err.Error(), "repository error is not wrapped again")
}

func TestPinAndDeleteReemit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := newRecorder[entities.Note]()

	unsubscribe, err := f.gw.SubscribeToNotes(ctx, "b@x.com", false, rec.onNext, rec.onError)
	require.NoError(t, err)
	t.Cleanup(unsubscribe)
	rec.next(t)

	require.NoError(t, f.gw.SetPinned(ctx, "n2", true))
	n2, ok := entities.FindNote(rec.next(t), "n2")
	require.True(t, ok)
	assert.True(t, n2.IsPinned)

	require.NoError(t, f.gw.DeleteNote(ctx, "n2"))
	assert.Equal(t, []string{"n1"}, ids(rec.next(t)))

	require.ErrorIs(t, f.gw.DeleteNote(ctx, "n2"), repositories.ErrNoteNotFound)
	err = f.gw.SetPinned(ctx, "n2", false)
	require.ErrorIs(t, err, repositories.ErrNoteNotFound)
	assert.Equal(t, repositories.ErrNoteNotFound.Error(), err.Error())
}

func TestSubscribeToAllowedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := newRecorder[entities.AllowedUser]()

	unsubscribe, err := f.gw.SubscribeToAllowedUsers(ctx, rec.onNext, rec.onError)
	require.NoError(t, err)
	t.Cleanup(unsubscribe)
	assert.Len(t, rec.next(t), 1)

	_, err = f.gw.AddAllowedUser(ctx, &entities.AllowedUser{ID: "u2", Email: "New@X.com"})
	require.NoError(t, err)
	assert.Len(t, rec.next(t), 2)

	_, err = f.gw.AddAllowedUser(ctx, &entities.AllowedUser{ID: "u3", Email: "broken"})
	require.ErrorIs(t, err, gateway.ErrInvalidEmail)
	assert.Equal(t, "failed to add allowed user: invalid email: broken", err.Error())
}

func TestQueryErrorEndsSubscription(t *testing.T) {
	f := newFixture(t)
	f.notes.listErr = errQuery
	rec := newRecorder[entities.Note]()

	unsubscribe, err := f.gw.SubscribeToNotes(context.Background(), "", true, rec.onNext, rec.onError)
	require.NoError(t, err)
	t.Cleanup(unsubscribe)

	select {
	case err := <-rec.errs:
		assert.ErrorIs(t, err, errQuery)
	case <-time.After(2 * time.Second):
		t.Fatal("error callback was not invoked")
	}
	assert.Empty(t, rec.snapshots)
}

func TestUnsubscribeReleasesListener(t *testing.T) {
	f := newFixture(t)
	baseline := goleak.IgnoreCurrent()

	rec := newRecorder[entities.Note]()
	unsubscribe, err := f.gw.SubscribeToNotes(context.Background(), "", true, rec.onNext, rec.onError)
	require.NoError(t, err)
	rec.next(t)

	unsubscribe()
	assert.NotPanics(t, assert.PanicTestFunc(unsubscribe), "second unsubscribe is a no-op")
	f.gw.Wait()
	goleak.VerifyNone(t, baseline)

	require.NoError(t, f.gw.SetPinned(context.Background(), "n1", true))
	select {
	case <-rec.snapshots:
		t.Fatal("snapshot delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}
