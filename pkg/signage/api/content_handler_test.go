package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/placard/placard/pkg/signage"
	"github.com/placard/placard/pkg/signage/api"
	"github.com/placard/placard/pkg/signage/kinds"
	"github.com/placard/placard/pkg/signage/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerEnv struct {
	router chi.Router
	repo   *memory.Repository
	actor  uuid.UUID
}

func setupHandler(t *testing.T, defaultKind string) *handlerEnv {
	t.Helper()

	repo := memory.New()
	registry := signage.NewKindRegistry(defaultKind)
	require.NoError(t, kinds.RegisterBuiltins(registry, kinds.Config{}))

	svc, err := signage.New(
		signage.WithRepository(repo),
		signage.WithKindRegistry(registry),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(api.ActorResolver(nil))
	r.Mount("/contents", api.NewContentHandler(svc, "/contents").Routes())

	return &handlerEnv{router: r, repo: repo, actor: uuid.New()}
}

func (e *handlerEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", e.actor.String())

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *handlerEnv) createTicker(t *testing.T, name string, feedIDs ...string) api.ContentResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/contents/", api.ContentRequest{
		Kind:       "Ticker",
		Attributes: map[string]string{"name": name, "data": "tick tock"},
		FeedIDs:    feedIDs,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp api.CreateContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Content
}

func TestCreateContentEndpoint(t *testing.T) {
	t.Run("creates content and reports the notice", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "Ticker",
			Attributes: map[string]string{"name": "Hello", "data": "x"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp api.CreateContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Content created but not submitted to any feeds.", resp.Notice)
		assert.Equal(t, "Ticker", resp.Content.Kind)
		assert.Equal(t, env.actor.String(), resp.Content.OwnerID)
	})

	t.Run("submitting to a feed changes the notice", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		feed := &signage.Feed{ID: uuid.New(), Name: "Lobby"}
		require.NoError(t, env.repo.CreateFeed(context.Background(), feed))

		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "Ticker",
			Attributes: map[string]string{"name": "Hello", "data": "x"},
			FeedIDs:    []string{feed.ID.String()},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp api.CreateContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Content created.", resp.Notice)
		require.Len(t, resp.Content.Submissions, 1)
	})

	t.Run("validation failure is a 422 with field errors", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "Ticker",
			Attributes: map[string]string{"data": "nameless", "owner_id": "sneaky"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "owner_id")
	})

	t.Run("unresolvable kind with a broken default is a 400", func(t *testing.T) {
		env := setupHandler(t, "Slideshow") // default never registered
		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "AlsoUnknown",
			Attributes: map[string]string{"name": "Doomed"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unrecognized content type.", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("missing default kind is a 500", func(t *testing.T) {
		env := setupHandler(t, "")
		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "Unknown",
			Attributes: map[string]string{"name": "Doomed"},
		})
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Missing default content type.", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("malformed feed id is a 400", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "Ticker",
			Attributes: map[string]string{"name": "Hello"},
			FeedIDs:    []string{"not-a-uuid"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetContentEndpoint(t *testing.T) {
	t.Run("returns the content", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		created := env.createTicker(t, "Readable")

		rec := env.do(t, http.MethodGet, "/contents/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.ContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Readable", resp.Name)
	})

	t.Run("stale id redirects with a notice", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		rec := env.do(t, http.MethodGet, "/contents/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/contents?notice=Content+not+found.", rec.Header().Get("Location"))
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		rec := env.do(t, http.MethodGet, "/contents/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateContentEndpoint(t *testing.T) {
	env := setupHandler(t, "Ticker")
	created := env.createTicker(t, "Before")

	rec := env.do(t, http.MethodPut, "/contents/"+created.ID, api.ContentRequest{
		Attributes: map[string]string{"name": "After"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.CreateContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "After", resp.Content.Name)
	assert.Equal(t, "Content updated.", resp.Notice)
}

func TestDeleteContentEndpoint(t *testing.T) {
	env := setupHandler(t, "Ticker")
	created := env.createTicker(t, "Doomed")

	rec := env.do(t, http.MethodDelete, "/contents/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Content deleted.")

	rec = env.do(t, http.MethodGet, "/contents/"+created.ID, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestDisplayContentEndpoint(t *testing.T) {
	env := setupHandler(t, "Ticker")
	created := env.createTicker(t, "News")

	rec := env.do(t, http.MethodGet, "/contents/"+created.ID+"/display", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tick tock", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	t.Run("matching If-None-Match is a 304", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/"+created.ID+"/display", nil)
		req.Header.Set("X-User-ID", env.actor.String())
		req.Header.Set("If-None-Match", etag)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Equal(t, etag, rec.Header().Get("ETag"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("different params miss the freshness check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/"+created.ID+"/display?width=640", nil)
		req.Header.Set("X-User-ID", env.actor.String())
		req.Header.Set("If-None-Match", etag)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPerformActionEndpoint(t *testing.T) {
	t.Run("defined action returns its result", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		rec := env.do(t, http.MethodPost, "/contents/", api.ContentRequest{
			Kind:       "HtmlText",
			Attributes: map[string]string{"name": "Blurb", "data": "just four little words"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp api.CreateContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		rec = env.do(t, http.MethodPut, fmt.Sprintf("/contents/%s/act?action_name=word_count", resp.Content.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "4", rec.Body.String())
	})

	t.Run("unknown action is a uniform 400", func(t *testing.T) {
		env := setupHandler(t, "Ticker")
		created := env.createTicker(t, "Plain")

		rec := env.do(t, http.MethodPut, fmt.Sprintf("/contents/%s/act?action_name=explode", created.ID), nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unable to perform action.", strings.TrimSpace(rec.Body.String()))
	})
}

func TestPreviewContentEndpoint(t *testing.T) {
	env := setupHandler(t, "Ticker")

	t.Run("previews supplied data", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/contents/preview?type=Ticker&data=hello", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>hello</p>", rec.Body.String())
	})

	t.Run("unknown type yields the literal message", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/contents/preview?type=Slideshow&data=hello", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Unrecognized content type", rec.Body.String())
	})
}

func TestNewContentEndpoint(t *testing.T) {
	env := setupHandler(t, "Ticker")
	feed := &signage.Feed{ID: uuid.New(), Name: "Lobby"}
	require.NoError(t, env.repo.CreateFeed(context.Background(), feed))

	rec := env.do(t, http.MethodGet, "/contents/new?type=html_text", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.NewContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "HtmlText", resp.Content.Kind)
	require.Len(t, resp.Feeds, 1)
	assert.Equal(t, "Lobby", resp.Feeds[0].Name)
}

func TestListContentsEndpoint(t *testing.T) {
	env := setupHandler(t, "Ticker")
	env.createTicker(t, "One")
	env.createTicker(t, "Two")

	rec := env.do(t, http.MethodGet, "/contents/?kind=ticker", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []api.ContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}
