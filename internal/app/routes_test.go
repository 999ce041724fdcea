package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilhub/scantrack/internal/lib/jwt"
	"github.com/vigilhub/scantrack/internal/models"
	authservice "github.com/vigilhub/scantrack/internal/services/auth"
	scanservice "github.com/vigilhub/scantrack/internal/services/scan"
	"github.com/vigilhub/scantrack/internal/storage/repository"
)

// fakeUserRepo — потокобезопасное in-memory хранилище пользователей
// с той же семантикой ошибок, что и у репозитория на PostgreSQL.
type fakeUserRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func (f *fakeUserRepo) RegisterUser(_ context.Context, user models.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return "", repository.ErrUserExists
		}
	}
	user.UID = uuid.NewString()
	user.CreatedAt = time.Now()
	f.users = append(f.users, &user)
	return user.UID, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		result = append(result, &copied)
	}
	return result, nil
}

// fakeScanRepo хранит сканирования в порядке создания.
type fakeScanRepo struct {
	mu    sync.Mutex
	scans []*models.Scan
}

func (f *fakeScanRepo) CreateScan(_ context.Context, scan models.Scan) (*models.Scan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	scan.ID = uuid.NewString()
	scan.CreatedAt = time.Now().Add(time.Duration(len(f.scans)) * time.Millisecond)
	f.scans = append(f.scans, &scan)
	copied := scan
	return &copied, nil
}

func (f *fakeScanRepo) ListScansByOwner(_ context.Context, ownerUID string, limit, offset int) ([]*models.Scan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []*models.Scan
	// Новые первыми.
	for i := len(f.scans) - 1; i >= 0; i-- {
		if f.scans[i].OwnerUID == ownerUID {
			copied := *f.scans[i]
			owned = append(owned, &copied)
		}
	}
	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

// noopCache всегда промахивается: сквозь него видно реальное хранилище.
type noopCache struct{}

func (noopCache) Get(string, any) (bool, error)        { return false, nil }
func (noopCache) Set(string, any, time.Duration) error { return nil }
func (noopCache) Invalidate(string) error              { return nil }

type testEnv struct {
	server *httptest.Server
	auth   *authservice.AuthService
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret-key", time.Hour)

	auth := authservice.NewAuthService(&fakeUserRepo{}, maker, 4)
	scans := scanservice.NewScanService(&fakeScanRepo{}, noopCache{}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, auth, scans)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, auth: auth}
}

type envelope struct {
	Status string         `json:"status"`
	Error  string         `json:"error"`
	Data   map[string]any `json:"data"`
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) registerAndLogin(t *testing.T, email, pass string) string {
	t.Helper()

	code, env := e.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"email":    email,
		"password": pass,
	})
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, env.Data["uid"])

	code, env = e.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": pass,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, models.RoleUser, env.Data["role"])

	token, ok := env.Data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestScanIsolationBetweenUsers(t *testing.T) {
	env := setupTestServer(t)

	aliceToken := env.registerAndLogin(t, "alice@example.com", "alicepass")
	bobToken := env.registerAndLogin(t, "bob@example.com", "bobpass123")

	code, created := env.doJSON(t, http.MethodPost, "/api/scans", aliceToken, map[string]string{
		"target_type":  "domain",
		"target_value": "example.org",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", created.Data["status"])
	assert.Equal(t, "example.org", created.Data["target_value"])

	// Чужие сканирования не видны.
	code, bobList := env.doJSON(t, http.MethodGet, "/api/scans", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), bobList.Data["list_count"])

	code, aliceList := env.doJSON(t, http.MethodGet, "/api/scans", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), aliceList.Data["list_count"])

	scans, ok := aliceList.Data["scans"].([]any)
	require.True(t, ok)
	require.Len(t, scans, 1)
	scan := scans[0].(map[string]any)
	assert.Equal(t, "example.org", scan["target_value"])
	assert.Equal(t, "pending", scan["status"])
}

func TestScanListOrdering(t *testing.T) {
	env := setupTestServer(t)

	token := env.registerAndLogin(t, "carol@example.com", "carolpass")

	for _, target := range []string{"first.example.org", "second.example.org", "third.example.org"} {
		code, _ := env.doJSON(t, http.MethodPost, "/api/scans", token, map[string]string{
			"target_type":  "domain",
			"target_value": target,
		})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env2 := env.doJSON(t, http.MethodGet, "/api/scans", token, nil)
	require.Equal(t, http.StatusOK, code)

	scans := env2.Data["scans"].([]any)
	require.Len(t, scans, 3)
	assert.Equal(t, "third.example.org", scans[0].(map[string]any)["target_value"])
	assert.Equal(t, "first.example.org", scans[2].(map[string]any)["target_value"])
}

func TestScanCreate_InvalidTarget(t *testing.T) {
	env := setupTestServer(t)

	token := env.registerAndLogin(t, "dave@example.com", "davepass123")

	cases := []struct {
		name string
		body map[string]string
		code int
	}{
		{
			name: "unknown target type",
			body: map[string]string{"target_type": "url", "target_value": "http://x"},
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed ip",
			body: map[string]string{"target_type": "ip", "target_value": "999.1.1.1"},
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "missing target value",
			body: map[string]string{"target_type": "domain"},
			code: http.StatusUnprocessableEntity,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := env.doJSON(t, http.MethodPost, "/api/scans", token, tc.body)
			assert.Equal(t, tc.code, code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)

	code, _ := env.doJSON(t, http.MethodGet, "/api/scans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.doJSON(t, http.MethodGet, "/api/scans", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// Токен, подписанный чужим ключом, тоже отклоняется.
	foreign, err := jwt.NewJWTMaker("another-secret", time.Hour).GenerateToken("uid-1", "x@example.com", models.RoleUser)
	require.NoError(t, err)
	code, _ = env.doJSON(t, http.MethodGet, "/api/scans", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDuplicateRegistration(t *testing.T) {
	env := setupTestServer(t)

	body := map[string]string{"email": "eve@example.com", "password": "evepass123"}

	code, _ := env.doJSON(t, http.MethodPost, "/api/register", "", body)
	require.Equal(t, http.StatusCreated, code)

	code, resp := env.doJSON(t, http.MethodPost, "/api/register", "", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email already registered", resp.Error)
}

func TestAdminUsersEndpoint(t *testing.T) {
	env := setupTestServer(t)

	require.NoError(t, env.auth.EnsureAdmin(context.Background(), "admin@example.com", "admin123"))

	userToken := env.registerAndLogin(t, "frank@example.com", "frankpass")

	code, loginResp := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, models.RoleAdmin, loginResp.Data["role"])
	adminToken := loginResp.Data["token"].(string)

	// Обычному пользователю список недоступен.
	code, _ = env.doJSON(t, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, usersResp := env.doJSON(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), usersResp.Data["list_count"])

	raw, err := json.Marshal(usersResp.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password_hash")
	assert.Contains(t, string(raw), "frank@example.com")
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.server.Client().Get(env.server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "OK", body.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.server.Client().Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "go_goroutines")
}
