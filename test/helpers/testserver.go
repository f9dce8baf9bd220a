package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"agrocommunity_backend/internal/app"
	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/config"
	"agrocommunity_backend/internal/email"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// RecordingMailer keeps activation mails so tests can read the code.
type RecordingMailer struct {
	mu    sync.Mutex
	mails []email.ActivationMail
}

func (m *RecordingMailer) SendActivation(_ context.Context, mail email.ActivationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, mail)
	return nil
}

// LastCode returns the code of the latest mail sent to addr.
func (m *RecordingMailer) LastCode(t *testing.T, addr string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.mails) - 1; i >= 0; i-- {
		if m.mails[i].To == addr {
			return m.mails[i].Code
		}
	}
	t.Fatalf("no activation mail sent to %s", addr)
	return ""
}

type TestServer struct {
	Server *httptest.Server
	Repos  *repositories.Repositories
	Mailer *RecordingMailer
	Config *config.Config
}

var setupOnce sync.Once

// NewTestServer runs the full router on the in-memory store.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	setupOnce.Do(func() {
		logger.Init("test")
		gin.SetMode(gin.TestMode)
	})

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Auth.ActivationSecret = "test-activation-secret"
	cfg.Auth.AccessSecret = "test-access-secret"
	cfg.Auth.RefreshSecret = "test-refresh-secret"
	cfg.Storage.BasePath = t.TempDir()

	store, err := storage.NewStorage(storage.Config{Type: "local", BasePath: cfg.Storage.BasePath, BaseURL: cfg.Storage.BaseURL})
	require.NoError(t, err)

	ts := &TestServer{
		Repos:  repositories.NewMemoryRepositories(),
		Mailer: &RecordingMailer{},
		Config: cfg,
	}
	router, err := app.SetupRouter(cfg, app.Dependencies{Repos: ts.Repos, Mailer: ts.Mailer, Storage: store})
	require.NoError(t, err)

	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Server.Close)
	return ts
}

// Client is one browser session with its own cookie jar.
type Client struct {
	ts   *TestServer
	http *http.Client
}

func (ts *TestServer) NewClient(t *testing.T) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	httpClient := &http.Client{Transport: ts.Server.Client().Transport, Jar: jar}
	return &Client{ts: ts, http: httpClient}
}

// SendRequest sends body as JSON and returns the response with its body.
func (c *Client) SendRequest(t *testing.T, method, path string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(t, req)
}

func (c *Client) Do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// CreateUser stores a verified user directly, bypassing activation.
func (ts *TestServer) CreateUser(t *testing.T, username, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Name:         username,
		Email:        username + "@farm.kz",
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
	}
	require.NoError(t, ts.Repos.Users.Create(context.Background(), user))
	return user
}

// LoginAs creates a user and returns a client holding its session cookies.
func (ts *TestServer) LoginAs(t *testing.T, username string, role models.UserRole) (*Client, *models.User) {
	t.Helper()
	user := ts.CreateUser(t, username, "secret123", role)

	client := ts.NewClient(t)
	res, body := client.SendRequest(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    user.Email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	return client, user
}
