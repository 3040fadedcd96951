package controller_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notedesk/internal/notes/app/controller"
	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/gateway"
	"notedesk/pkg/logger"
)

var (
	errPermission = errors.New("permission denied")
	errEmpty      = errors.New("")
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SubscribeToNotes(ctx context.Context, viewerEmail string, privileged bool,
	onNext gateway.NotesHandler, onError gateway.ErrorHandler,
) (gateway.Unsubscribe, error) {
	args := m.Called(ctx, viewerEmail, privileged, onNext, onError)
	if fn := args.Get(0); fn != nil {
		return fn.(gateway.Unsubscribe), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) SubscribeToAllowedUsers(ctx context.Context,
	onNext gateway.UsersHandler, onError gateway.ErrorHandler,
) (gateway.Unsubscribe, error) {
	args := m.Called(ctx, onNext, onError)
	if fn := args.Get(0); fn != nil {
		return fn.(gateway.Unsubscribe), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) AssignNoteToUsers(ctx context.Context, noteID string, emails []string) error {
	args := m.Called(ctx, noteID, emails)
	return args.Error(0)
}

func (m *MockGateway) SetPinned(ctx context.Context, noteID string, pinned bool) error {
	args := m.Called(ctx, noteID, pinned)
	return args.Error(0)
}

func (m *MockGateway) DeleteNote(ctx context.Context, noteID string) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

type errorSink struct {
	errs []error
}

func (s *errorSink) report(err error) {
	s.errs = append(s.errs, err)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", controller.UserMessage(nil))
	assert.Equal(t, "permission denied", controller.UserMessage(errPermission))
	assert.Equal(t, controller.FallbackMessage, controller.UserMessage(errEmpty))
	assert.Equal(t, "Failed to save", controller.FallbackMessage)
}

func TestController_TogglePin(t *testing.T) {
	tests := []struct {
		name       string
		current    bool
		wantPinned bool
		gwErr      error
	}{
		{name: "pin", current: false, wantPinned: true},
		{name: "unpin", current: true, wantPinned: false},
		{name: "gateway error is reported", current: false, wantPinned: true, gwErr: errPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			sink := &errorSink{}
			c := controller.New(gw, sink.report)
			gw.On("SetPinned", mock.Anything, "n1", tt.wantPinned).Return(tt.gwErr)

			err := c.TogglePin(context.Background(), "n1", tt.current)

			gw.AssertExpectations(t)
			if tt.gwErr == nil {
				require.NoError(t, err)
				assert.Empty(t, sink.errs)
				return
			}
			require.ErrorIs(t, err, tt.gwErr)
			assert.Equal(t, tt.gwErr.Error(), controller.UserMessage(err), "gateway text is shown once")
			require.Len(t, sink.errs, 1)
			assert.ErrorIs(t, sink.errs[0], tt.gwErr)
		})
	}
}

func TestController_TogglePinWithoutNote(t *testing.T) {
	gw := new(MockGateway)
	sink := &errorSink{}
	c := controller.New(gw, sink.report)

	err := c.TogglePin(context.Background(), "", false)

	require.ErrorIs(t, err, controller.ErrNoteIDRequired)
	gw.AssertNotCalled(t, "SetPinned", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, sink.errs, 1)
}

func TestController_Delete(t *testing.T) {
	t.Run("clears selection of deleted note", func(t *testing.T) {
		gw := new(MockGateway)
		c := controller.New(gw, nil)
		c.Select("n1")
		gw.On("DeleteNote", mock.Anything, "n1").Return(nil)

		require.NoError(t, c.Delete(context.Background(), "n1"))
		assert.Empty(t, c.SelectedID())
		gw.AssertExpectations(t)
	})

	t.Run("keeps other selection", func(t *testing.T) {
		gw := new(MockGateway)
		c := controller.New(gw, nil)
		c.Select("n2")
		gw.On("DeleteNote", mock.Anything, "n1").Return(nil)

		require.NoError(t, c.Delete(context.Background(), "n1"))
		assert.Equal(t, "n2", c.SelectedID())
	})

	t.Run("failure keeps state and reports", func(t *testing.T) {
		gw := new(MockGateway)
		sink := &errorSink{}
		c := controller.New(gw, sink.report)
		c.Select("n1")
		gw.On("DeleteNote", mock.Anything, "n1").Return(errPermission)

		err := c.Delete(context.Background(), "n1")

		require.ErrorIs(t, err, errPermission)
		assert.Equal(t, errPermission.Error(), err.Error())
		assert.Equal(t, "n1", c.SelectedID())
		assert.Len(t, sink.errs, 1)
	})
}

func TestController_MutationsCarryOperationID(t *testing.T) {
	gw := new(MockGateway)
	c := controller.New(gw, nil)

	var ids []string
	record := func(args mock.Arguments) {
		id, ok := logger.OperationID(args.Get(0).(context.Context))
		require.True(t, ok)
		ids = append(ids, id)
	}
	gw.On("SetPinned", mock.Anything, "n1", true).Run(record).Return(nil)
	gw.On("DeleteNote", mock.Anything, "n1").Run(record).Return(nil)
	gw.On("AssignNoteToUsers", mock.Anything, "n1", []string{"a@x.com"}).Run(record).Return(nil)

	ctx := context.Background()
	require.NoError(t, c.TogglePin(ctx, "n1", false))
	require.NoError(t, c.TogglePin(ctx, "n1", false))
	require.NoError(t, c.AssignToUsers(ctx, "n1", []string{"a@x.com"}))
	require.NoError(t, c.Delete(ctx, "n1"))

	require.Len(t, ids, 4)
	assert.Len(t, slices.Compact(slices.Sorted(slices.Values(ids))), 4, "every mutation gets its own id")
}

func TestController_Selected(t *testing.T) {
	gw := new(MockGateway)
	c := controller.New(gw, nil)
	notes := []entities.Note{{ID: "n1", Title: "One"}, {ID: "n2", Title: "Two"}}

	_, ok := c.Selected(notes)
	assert.False(t, ok, "nothing selected yet")

	c.Select("n2")
	got, ok := c.Selected(notes)
	require.True(t, ok)
	assert.Equal(t, "Two", got.Title)

	_, ok = c.Selected(notes[:1])
	assert.False(t, ok, "note disappeared from the snapshot")
	assert.Empty(t, c.SelectedID(), "weak reference is cleared")

	_, ok = c.Selected(notes)
	assert.False(t, ok, "selection does not come back")

	c.Select("n1")
	c.ClearSelection()
	assert.Empty(t, c.SelectedID())
}

func TestController_AssignToUsers(t *testing.T) {
	t.Run("passes the full list", func(t *testing.T) {
		gw := new(MockGateway)
		sink := &errorSink{}
		c := controller.New(gw, sink.report)
		gw.On("AssignNoteToUsers", mock.Anything, "n1", []string{"a@x.com", "b@x.com"}).Return(nil)

		require.NoError(t, c.AssignToUsers(context.Background(), "n1", []string{"a@x.com", "b@x.com"}))
		gw.AssertExpectations(t)
	})

	t.Run("error is returned, not reported", func(t *testing.T) {
		gw := new(MockGateway)
		sink := &errorSink{}
		c := controller.New(gw, sink.report)
		gw.On("AssignNoteToUsers", mock.Anything, "n1", []string{}).Return(errPermission)

		err := c.AssignToUsers(context.Background(), "n1", []string{})

		require.ErrorIs(t, err, errPermission)
		assert.Empty(t, sink.errs)
	})

	t.Run("requires note", func(t *testing.T) {
		c := controller.New(new(MockGateway), nil)
		assert.ErrorIs(t, c.AssignToUsers(context.Background(), "", nil), controller.ErrNoteIDRequired)
	})
}
