package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository/memstore"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:             "test-secret",
	AccessTokenTTLMinutes: 5,
	BcryptCost:            bcrypt.MinCost,
}

var eventStart = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store         *memstore.Store
	dispatcher    events.Dispatcher
	mu            sync.Mutex
	published     []events.Event
	auth          *AuthService
	users         *UserService
	events        *EventService
	registrations *RegistrationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), dispatcher: events.NewInMemoryDispatcher()}
	for _, eventType := range events.AllTypes {
		f.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, e)
			return nil
		})
	}
	f.auth = NewAuthService(testAuthConfig, AuthDependencies{Store: f.store})
	f.users = NewUserService(testAuthConfig, UserDependencies{Store: f.store})
	f.events = NewEventService(EventDependencies{Store: f.store, Dispatcher: f.dispatcher})
	f.registrations = NewRegistrationService(RegistrationDependencies{Store: f.store, Dispatcher: f.dispatcher})
	return f
}

func (f *fixture) account(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, _, err := f.auth.RegisterAccount(context.Background(), RegisterInput{
		Name: "Test " + email, Email: email, Password: "password123", Role: role,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) event(t *testing.T, ownerID string, capacity int) *domain.Event {
	t.Helper()
	event, err := f.events.CreateEvent(context.Background(), ownerID, EventCreateInput{
		Title:    "GopherCon",
		StartsAt: eventStart,
		EndsAt:   eventStart.Add(8 * time.Hour),
		Capacity: &capacity,
	})
	require.NoError(t, err)
	return event
}

func (f *fixture) publishedTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}
