package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulsechat/auth"
	"pulsechat/cleanup"
	"pulsechat/common"
	"pulsechat/config"
	"pulsechat/database"
	"pulsechat/logging"
	"pulsechat/media"
	"pulsechat/middleware"
	"pulsechat/models"
	"pulsechat/readmodel"
	"pulsechat/relay"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

type hostStub struct {
	fail bool
}

func (h hostStub) Upload(_ context.Context, payload, folder string) (string, error) {
	if h.fail {
		return "", common.ErrUpstreamUnavailable
	}
	if !media.IsInline(payload) {
		return payload, nil
	}
	return "https://cdn/" + folder + "/obj", nil
}

func (h hostStub) Delete(context.Context, string) error { return nil }

func (h hostStub) Hosted(ref string) bool {
	return len(ref) > 12 && ref[:12] == "https://cdn/"
}

func newTestRouter(t *testing.T, host media.Host) http.Handler {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	tokens := auth.NewManager("test-secret", time.Hour)
	read := readmodel.NewService(db)
	rly := relay.New(relay.NewHub(), db, read, host, nopLogger{}, time.Second)
	cln := cleanup.NewService(db, host, nopLogger{})
	guard := middleware.NewGuard(tokens, db)

	return New(db, rly, read, host, tokens, cln, nopLogger{}, cfg).Router(guard)
}

func doJSON(t *testing.T, router http.Handler, method, path string, cookie *http.Cookie, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupTestUser(t *testing.T, router http.Handler, username, email string) *http.Cookie {
	t.Helper()

	rec := doJSON(t, router, "POST", "/api/auth/signup", nil, map[string]string{
		"username": username, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("no token cookie issued")
	return nil
}

type storyResponse struct {
	Story   models.Story `json:"story"`
	Warning string       `json:"warning"`
}

func TestCreateStory_CaptionOnly(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, hostStub{})
	cookie := signupTestUser(t, router, "alice", "a@example.com")

	rec := doJSON(t, router, "POST", "/api/stories", cookie, map[string]string{
		"type": "image", "caption": "just words",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp storyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Story.MediaURL)
	require.Equal(t, "just words", resp.Story.Caption)
	require.Equal(t, models.DefaultStoryBackground, resp.Story.BackgroundURL)
	require.Empty(t, resp.Warning)
}

func TestCreateStory_NeedsMediaOrCaption(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, hostStub{})
	cookie := signupTestUser(t, router, "alice", "a@example.com")

	rec := doJSON(t, router, "POST", "/api/stories", cookie, map[string]string{"type": "image"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStory_InlineBackgroundUploaded(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, hostStub{})
	cookie := signupTestUser(t, router, "alice", "a@example.com")

	rec := doJSON(t, router, "POST", "/api/stories", cookie, map[string]string{
		"type":           "image",
		"caption":        "sunset",
		"background_url": "data:image/png;base64,aGVsbG8=",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp storyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "https://cdn/stories/obj", resp.Story.BackgroundURL)
}

func TestCreateStory_UploadFallbackKeepsPayload(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, hostStub{fail: true})
	cookie := signupTestUser(t, router, "alice", "a@example.com")

	inline := "data:image/png;base64,aGVsbG8="
	rec := doJSON(t, router, "POST", "/api/stories", cookie, map[string]string{
		"type": "image", "media_url": inline,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp storyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, inline, resp.Story.MediaURL)
	require.NotEmpty(t, resp.Warning)
}

func TestListStories_ScopedToCaller(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, hostStub{})
	alice := signupTestUser(t, router, "alice", "a@example.com")
	stranger := signupTestUser(t, router, "mallory", "m@example.com")

	rec := doJSON(t, router, "POST", "/api/stories", alice, map[string]string{
		"type": "image", "caption": "mine",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "GET", "/api/stories", stranger, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var forStranger []models.StoryWithUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forStranger))
	require.Empty(t, forStranger)

	rec = doJSON(t, router, "GET", "/api/stories", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var forOwner []models.StoryWithUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forOwner))
	require.Len(t, forOwner, 1)
	require.Equal(t, "mine", forOwner[0].Caption)
}
