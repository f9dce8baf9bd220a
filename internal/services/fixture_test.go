package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/email"
	"agrocommunity_backend/internal/imageprocessor"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/internal/storage"
	"agrocommunity_backend/ws"

	"github.com/stretchr/testify/require"
)

// recordingMailer keeps every activation mail instead of sending it.
type recordingMailer struct {
	mu    sync.Mutex
	mails []email.ActivationMail
	fail  bool
}

func (m *recordingMailer) SendActivation(_ context.Context, mail email.ActivationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.mails = append(m.mails, mail)
	return nil
}

func (m *recordingMailer) last() email.ActivationMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mails[len(m.mails)-1]
}

type event struct {
	Name string
	Data any
}

type fakeConn struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeConn) Emit(name string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{name, data})
	return nil
}

// named returns the events called name, skipping presence broadcasts.
func (f *fakeConn) named(name string) []event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event
	for _, e := range f.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	repos    *repositories.Repositories
	tokens   *auth.TokenService
	mailer   *recordingMailer
	presence *ws.PresenceRegistry
	services *ServiceContainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		ActivationSecret: "activation-secret",
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
	})
	require.NoError(t, err)

	store, err := storage.NewStorage(storage.Config{Type: "local", BasePath: t.TempDir(), BaseURL: "/files"})
	require.NoError(t, err)

	f := &fixture{
		repos:    repositories.NewMemoryRepositories(),
		tokens:   tokens,
		mailer:   &recordingMailer{},
		presence: ws.NewPresenceRegistry(nil),
	}
	f.services = NewServiceContainer(ContainerDeps{
		Repos:    f.repos,
		Tokens:   tokens,
		Mailer:   f.mailer,
		Storage:  store,
		Images:   imageprocessor.NewProcessor(80, 800),
		Presence: f.presence,
	})
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Username: username, Name: username, Email: username + "@farm.kz", PasswordHash: hash, IsVerified: true}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) connect(userID string) *fakeConn {
	conn := &fakeConn{}
	f.presence.Register(userID, conn)
	return conn
}

func (f *fixture) post(t *testing.T, author *models.User) *models.Post {
	t.Helper()
	p := &models.Post{Caption: "harvest", Image: "/files/p.jpg", ImageKey: "p.jpg", AuthorID: author.ID}
	require.NoError(t, f.repos.Posts.Create(context.Background(), p))
	return p
}
