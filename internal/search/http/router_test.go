package http

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordsearch/pagefinder/internal/search/service"
	"github.com/nordsearch/pagefinder/internal/search/session"
	"github.com/nordsearch/pagefinder/internal/search/store/drivers/sqlite"
)

type testEnv struct {
	server *httptest.Server
	client *http.Client
	db     *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A file-backed database so the test can seed pages over a second
	// connection while the store holds its own.
	dsn := filepath.Join(t.TempDir(), "pagefinder_test.db")

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager("test-secret")

	router := NewRouter(sessions, "test", st, logger)
	router.SearchService = &service.SearchService{Store: st}
	router.AccountService = &service.AccountService{Store: st}
	router.WeatherService = &service.WeatherService{}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		server: server,
		client: &http.Client{Jar: jar},
		db:     db,
	}
}

func (e *testEnv) seedPage(t *testing.T, language, title, content string) {
	t.Helper()
	_, err := e.db.Exec(
		`INSERT INTO pages (language, title, url, content) VALUES (?, ?, ?, ?)`,
		language, title, "https://example.org/"+url.PathEscape(title), content,
	)
	require.NoError(t, err)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerForm(username string) url.Values {
	return url.Values{
		"username":  {username},
		"email":     {username + "@example.org"},
		"password":  {"hunter2"},
		"password2": {"hunter2"},
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedPage(t, "en", "Gopher", "the gopher digs tunnels")
	env.seedPage(t, "en", "Badger", "the badger digs too")
	env.seedPage(t, "da", "Graevling", "en graevling graver tunneler")

	t.Run("matches substring in default language", func(t *testing.T) {
		resp := env.get(t, "/api/search?q=digs")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[SearchResponse](t, resp)
		assert.Equal(t, "digs", body.Query)
		require.Len(t, body.Data, 2)
		assert.Equal(t, "Gopher", body.Data[0].Title)
		assert.Equal(t, "Badger", body.Data[1].Title)
	})

	t.Run("language scopes results", func(t *testing.T) {
		resp := env.get(t, "/api/search?q=graver&language=da")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[SearchResponse](t, resp)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Graevling", body.Data[0].Title)
	})

	t.Run("empty query returns empty data not null", func(t *testing.T) {
		resp := env.get(t, "/api/search")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[SearchResponse](t, resp)
		assert.NotNil(t, body.Data)
		assert.Empty(t, body.Data)
	})

	t.Run("root serves search too", func(t *testing.T) {
		resp := env.get(t, "/?q=tunnels")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[SearchResponse](t, resp)
		require.Len(t, body.Data, 1)
	})

	t.Run("no match is an empty result", func(t *testing.T) {
		resp := env.get(t, "/api/search?q=submarine")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[SearchResponse](t, resp)
		assert.Empty(t, body.Data)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates an account", func(t *testing.T) {
		env := newTestEnv(t)

		resp := env.postForm(t, "/api/register", registerForm("alice"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody[OutcomeResponse](t, resp)
		assert.Equal(t, "You were successfully registered and can login now", body.Message)
		assert.Equal(t, "/login", body.Redirect)
		assert.NotZero(t, body.UserID)
	})

	t.Run("validation failures in declared order", func(t *testing.T) {
		env := newTestEnv(t)

		cases := []struct {
			name    string
			form    url.Values
			status  int
			message string
		}{
			{
				name:    "missing username wins over bad email",
				form:    url.Values{"email": {"nope"}, "password": {"x"}, "password2": {"y"}},
				status:  http.StatusUnprocessableEntity,
				message: "You have to enter a username",
			},
			{
				name:    "email without at sign",
				form:    url.Values{"username": {"bob"}, "email": {"nope"}, "password": {"x"}, "password2": {"x"}},
				status:  http.StatusUnprocessableEntity,
				message: "You have to enter a valid email address",
			},
			{
				name:    "mismatched passwords",
				form:    url.Values{"username": {"bob"}, "email": {"bob@example.org"}, "password": {"x"}, "password2": {"y"}},
				status:  http.StatusUnprocessableEntity,
				message: "The two passwords do not match",
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				resp := env.postForm(t, "/api/register", tc.form)
				require.Equal(t, tc.status, resp.StatusCode)

				var body struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				resp.Body.Close()
				assert.Equal(t, tc.message, body.Error)
			})
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		env := newTestEnv(t)

		resp := env.postForm(t, "/api/register", registerForm("carol"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = env.postForm(t, "/api/register", registerForm("carol"))
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, "The username is already taken", body.Error)
	})

	t.Run("logged in caller is redirected without a write", func(t *testing.T) {
		env := newTestEnv(t)

		resp := env.postForm(t, "/api/register", registerForm("dave"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = env.postForm(t, "/api/login", url.Values{
			"username": {"dave"},
			"password": {"hunter2"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = env.postForm(t, "/api/register", registerForm("eve"))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[OutcomeResponse](t, resp)
		assert.Equal(t, "You are already logged in", body.Message)

		// eve must not exist
		var n int
		require.NoError(t, env.db.QueryRow(
			`SELECT COUNT(*) FROM users WHERE username = ?`, "eve").Scan(&n))
		assert.Zero(t, n)
	})
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/api/register", registerForm("alice"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("unknown username", func(t *testing.T) {
		resp := env.postForm(t, "/api/login", url.Values{
			"username": {"nobody"},
			"password": {"hunter2"},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, "Invalid username", body.Error)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := env.postForm(t, "/api/login", url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, "Invalid password", body.Error)
	})

	t.Run("valid credentials set a session cookie", func(t *testing.T) {
		resp := env.postForm(t, "/api/login", url.Values{
			"username": {"alice"},
			"password": {"hunter2"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[OutcomeResponse](t, resp)
		assert.Equal(t, "You were logged in", body.Message)
		assert.NotZero(t, body.UserID)

		serverURL, err := url.Parse(env.server.URL)
		require.NoError(t, err)

		var found bool
		for _, c := range env.client.Jar.Cookies(serverURL) {
			if c.Name == sessionCookieName && c.Value != "" {
				found = true
			}
		}
		assert.True(t, found, "session cookie should be set")
	})
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)

	// Logging out without a session is fine.
	resp := env.get(t, "/api/logout")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[OutcomeResponse](t, resp)
	assert.Equal(t, "You were logged out", body.Message)

	// And again; the endpoint is idempotent.
	resp = env.get(t, "/api/logout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/api/register", registerForm("alice"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.postForm(t, "/api/login", url.Values{
		"username": {"alice"},
		"password": {"hunter2"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// While logged in, register reports the active session.
	resp = env.postForm(t, "/api/register", registerForm("other"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[OutcomeResponse](t, resp)
	assert.Equal(t, "You are already logged in", body.Message)

	// Logout clears it; the next register goes through.
	resp = env.get(t, "/api/logout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.postForm(t, "/api/register", registerForm("other"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestWeatherEndpointNotConfigured(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/weather")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/livez")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	livez := decodeBody[HealthResponse](t, resp)
	assert.Equal(t, "ok", livez.Status)
	assert.Equal(t, "test", livez.Version)

	resp = env.get(t, "/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readyz := decodeBody[HealthResponse](t, resp)
	assert.Equal(t, "ok", readyz.Status)
	require.NotNil(t, readyz.Checks)
	assert.Equal(t, "ok", readyz.Checks.Database)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
