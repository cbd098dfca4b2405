package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	apperrors "github.com/spec-kit/event-service/pkg/util/errorutil"
)

func ptr[T any](v T) *T { return &v }

func TestCreateEvent_Defaults(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)

	event, err := f.events.CreateEvent(context.Background(), owner.ID, EventCreateInput{
		Title:    "  Meetup ",
		StartsAt: eventStart,
		EndsAt:   eventStart.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Meetup", event.Title)
	assert.Equal(t, domain.DefaultEventCapacity, event.Capacity)
	assert.Equal(t, domain.EventStatusPending, event.Status)
	assert.Equal(t, 0, event.Registered)
	assert.Equal(t, owner.ID, event.CreatorID)
	assert.Equal(t, []events.EventType{events.EventEventCreated}, f.publishedTypes())
}

func TestCreateEvent_RejectsInvalidWindow(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)

	for name, end := range map[string]time.Time{
		"start equals end": eventStart,
		"start after end":  eventStart.Add(-time.Hour),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.events.CreateEvent(context.Background(), owner.ID, EventCreateInput{
				Title: "Bad", StartsAt: eventStart, EndsAt: end,
			})
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	list, err := f.events.ListEvents(context.Background(), EventListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateEvent_RejectsBadCapacityAndStatus(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)

	_, err := f.events.CreateEvent(context.Background(), owner.ID, EventCreateInput{
		Title: "x", StartsAt: eventStart, EndsAt: eventStart.Add(time.Hour), Capacity: ptr(0),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.events.CreateEvent(context.Background(), owner.ID, EventCreateInput{
		Title: "x", StartsAt: eventStart, EndsAt: eventStart.Add(time.Hour), Status: ptr(domain.EventStatus("DRAFT")),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateEvent_OwnerChangesTitleOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)
	attendee := f.account(t, "ana@example.com", domain.RoleAttendee)
	event := f.event(t, owner.ID, 10)
	_, err := f.registrations.Register(context.Background(), event.ID, attendee.ID)
	require.NoError(t, err)

	f.store.SetClock(func() time.Time { return time.Now().Add(time.Minute) })
	updated, err := f.events.UpdateEvent(context.Background(), owner.ID, event.ID, EventUpdateInput{Title: ptr("Renamed")})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 1, updated.Registered)
	assert.Equal(t, owner.ID, updated.CreatorID)
	assert.Equal(t, event.Capacity, updated.Capacity)
	assert.True(t, updated.UpdatedAt.After(event.UpdatedAt))
}

func TestUpdateEvent_Rules(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)
	other := f.account(t, "other@example.com", domain.RoleOrganizer)
	attendee := f.account(t, "ana@example.com", domain.RoleAttendee)
	event := f.event(t, owner.ID, 10)
	_, err := f.registrations.Register(context.Background(), event.ID, attendee.ID)
	require.NoError(t, err)
	_, err = f.events.CreateSession(context.Background(), owner.ID, event.ID, SessionCreateInput{
		Title: "Keynote", SpeakerName: "Rob", StartsAt: eventStart.Add(time.Hour), EndsAt: eventStart.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor string
		input EventUpdateInput
		want  error
	}{
		{name: "non owner", actor: other.ID, input: EventUpdateInput{Title: ptr("x")}, want: apperrors.ErrForbidden},
		{name: "merged window inverted", actor: owner.ID, input: EventUpdateInput{EndsAt: ptr(eventStart.Add(-time.Hour))}, want: apperrors.ErrValidation},
		{name: "capacity below registered", actor: owner.ID, input: EventUpdateInput{Capacity: ptr(0)}, want: apperrors.ErrValidation},
		{name: "window drops session", actor: owner.ID, input: EventUpdateInput{StartsAt: ptr(eventStart.Add(90 * time.Minute))}, want: apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.UpdateEvent(context.Background(), tt.actor, event.ID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := f.store.Events().GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "GopherCon", stored.Title)
	assert.Equal(t, eventStart, stored.StartsAt)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)
	attendee := f.account(t, "ana@example.com", domain.RoleAttendee)
	event := f.event(t, owner.ID, 10)
	_, err := f.registrations.Register(context.Background(), event.ID, attendee.ID)
	require.NoError(t, err)

	err = f.events.DeleteEvent(context.Background(), attendee.ID, event.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.events.DeleteEvent(context.Background(), owner.ID, event.ID))
	_, err = f.events.GetEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	mine, err := f.events.ListMyRegistrations(context.Background(), attendee.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)
	other := f.account(t, "other@example.com", domain.RoleOrganizer)
	event := f.event(t, owner.ID, 10)

	valid := SessionCreateInput{
		Title: "Keynote", SpeakerName: "Rob", StartsAt: eventStart, EndsAt: eventStart.Add(time.Hour),
	}

	_, err := f.events.CreateSession(context.Background(), other.ID, event.ID, valid)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	outside := valid
	outside.EndsAt = event.EndsAt.Add(time.Minute)
	_, err = f.events.CreateSession(context.Background(), owner.ID, event.ID, outside)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	before := valid
	before.StartsAt = eventStart.Add(-time.Minute)
	_, err = f.events.CreateSession(context.Background(), owner.ID, event.ID, before)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.events.CreateSession(context.Background(), owner.ID, "00000000-0000-0000-0000-000000000000", valid)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	sessions, err := f.events.ListSessions(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	session, err := f.events.CreateSession(context.Background(), owner.ID, event.ID, valid)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSessionCapacity, session.Capacity)

	details, err := f.events.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, details.Sessions, 1)
	assert.Equal(t, session.ID, details.Sessions[0].ID)
	assert.Contains(t, f.publishedTypes(), events.EventSessionCreated)
}

func TestListEvents_SearchAndPaging(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)
	for i := 0; i < 4; i++ {
		f.event(t, owner.ID, 5)
	}
	_, err := f.events.CreateEvent(context.Background(), owner.ID, EventCreateInput{
		Title: "Kubernetes day", Description: "Operators and CRDs", StartsAt: eventStart, EndsAt: eventStart.Add(time.Hour),
	})
	require.NoError(t, err)

	found, err := f.events.ListEvents(context.Background(), EventListFilter{Search: "crds"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Kubernetes day", found[0].Title)

	page, err := f.events.ListEvents(context.Background(), EventListFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestListEventRegistrations_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.account(t, "owner@example.com", domain.RoleOrganizer)
	attendee := f.account(t, "ana@example.com", domain.RoleAttendee)
	event := f.event(t, owner.ID, 10)
	_, err := f.registrations.Register(context.Background(), event.ID, attendee.ID)
	require.NoError(t, err)

	_, err = f.events.ListEventRegistrations(context.Background(), attendee.ID, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	regs, err := f.events.ListEventRegistrations(context.Background(), owner.ID, event.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, attendee.ID, regs[0].User.ID)

	mine, err := f.events.ListMyRegistrations(context.Background(), attendee.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, event.ID, mine[0].Event.ID)
}
