package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/virtual-events/internal/auth"
	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
	"github.com/Shivanand-hulikatti/virtual-events/internal/repository"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (f *fakeNotifier) Enqueue(n model.Notification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return true
}

func newUserService(t *testing.T) (*UserService, *fakeNotifier, *auth.JWTManager) {
	t.Helper()
	tokens, err := auth.NewJWTManager("test-secret", "virtual-events")
	require.NoError(t, err)
	notifier := &fakeNotifier{}
	return NewUserService(repository.NewUserRepository(), tokens, notifier, zerolog.Nop()), notifier, tokens
}

func aliceRequest() model.RegisterUserRequest {
	return model.RegisterUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "pass123",
		Role:     model.RoleOrganizer,
	}
}

func TestRegister_StoresHashAndNotifies(t *testing.T) {
	svc, notifier, _ := newUserService(t)

	user, err := svc.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "pass123", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "alice@example.com", notifier.sent[0].To)
	assert.Equal(t, "Hello Alice, welcome!", notifier.sent[0].Body)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, notifier, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	dup := aliceRequest()
	dup.Email = "  ALICE@example.com "
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Equal(t, 1, svc.Count())
	assert.Len(t, notifier.sent, 1)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc, _, _ := newUserService(t)

	tests := []struct {
		name   string
		mutate func(*model.RegisterUserRequest)
	}{
		{"missing name", func(r *model.RegisterUserRequest) { r.Name = "  " }},
		{"missing email", func(r *model.RegisterUserRequest) { r.Email = "" }},
		{"malformed email", func(r *model.RegisterUserRequest) { r.Email = "not-an-email" }},
		{"missing password", func(r *model.RegisterUserRequest) { r.Password = "" }},
		{"missing role", func(r *model.RegisterUserRequest) { r.Role = "" }},
		{"unknown role", func(r *model.RegisterUserRequest) { r.Role = "admin" }},
		{"password too long", func(r *model.RegisterUserRequest) { r.Password = strings.Repeat("p", MaxPasswordBytes+1) }},
		{"multibyte password too long", func(r *model.RegisterUserRequest) { r.Password = strings.Repeat("é", 40) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := aliceRequest()
			tt.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, svc.Count())
}

func TestRegister_LongestPassword(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	req := aliceRequest()
	req.Password = strings.Repeat("p", MaxPasswordBytes)
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, req.Email, req.Password)
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, aliceRequest())
	require.NoError(t, err)

	token, err := svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "pass123"})
	require.NoError(t, err)

	claim, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claim.ID)
	assert.Equal(t, model.RoleOrganizer, claim.Role)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "pass123"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

var (
	organizerA = model.IdentityClaim{ID: 1, Email: "a@example.com", Role: model.RoleOrganizer}
	organizerB = model.IdentityClaim{ID: 2, Email: "b@example.com", Role: model.RoleOrganizer}
	attendee   = model.IdentityClaim{ID: 3, Email: "c@example.com", Role: model.RoleAttendee}
)

func summit() model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:       "Tech Summit",
		Date:        "2025-01-20",
		Time:        "14:00",
		Description: "Tech event",
	}
}

func TestCreateEvent(t *testing.T) {
	svc := NewEventService(repository.NewEventRepository(), zerolog.Nop())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, organizerA, summit())
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.ID)
	assert.Equal(t, organizerA.ID, event.OrganizerID)
	assert.Empty(t, event.Participants)

	_, err = svc.CreateEvent(ctx, attendee, summit())
	assert.ErrorIs(t, err, ErrRoleForbidden)

	missing := summit()
	missing.Time = " "
	_, err = svc.CreateEvent(ctx, organizerA, missing)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "time is required")
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	svc := NewEventService(repository.NewEventRepository(), zerolog.Nop())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, organizerA, summit())
	require.NoError(t, err)

	_, err = svc.UpdateEvent(ctx, organizerB, event.ID, model.UpdateEventRequest{Title: "Mine now"})
	assert.ErrorIs(t, err, repository.ErrNotOwner)
	assert.ErrorIs(t, svc.DeleteEvent(ctx, organizerB, event.ID), repository.ErrNotOwner)

	_, err = svc.UpdateEvent(ctx, attendee, event.ID, model.UpdateEventRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrRoleForbidden)
	assert.ErrorIs(t, svc.DeleteEvent(ctx, attendee, event.ID), ErrRoleForbidden)

	updated, err := svc.UpdateEvent(ctx, organizerA, event.ID, model.UpdateEventRequest{Description: "Updated"})
	require.NoError(t, err)
	assert.Equal(t, "Tech Summit", updated.Title)
	assert.Equal(t, "Updated", updated.Description)

	require.NoError(t, svc.DeleteEvent(ctx, organizerA, event.ID))

	_, err = svc.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.UpdateEvent(ctx, organizerA, event.ID, model.UpdateEventRequest{Title: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.JoinEvent(ctx, attendee, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventIDsNotReused(t *testing.T) {
	svc := NewEventService(repository.NewEventRepository(), zerolog.Nop())
	ctx := context.Background()

	first, err := svc.CreateEvent(ctx, organizerA, summit())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteEvent(ctx, organizerA, first.ID))

	second, err := svc.CreateEvent(ctx, organizerA, summit())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestJoinEvent(t *testing.T) {
	svc := NewEventService(repository.NewEventRepository(), zerolog.Nop())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, organizerA, summit())
	require.NoError(t, err)

	joined, err := svc.JoinEvent(ctx, attendee, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{attendee.ID}, joined.Participants)

	_, err = svc.JoinEvent(ctx, attendee, event.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyRegistered)

	// Organizers may join too, including their own events.
	joined, err = svc.JoinEvent(ctx, organizerA, event.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{attendee.ID, organizerA.ID}, joined.Participants)

	listed, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Participants, 2)
}
