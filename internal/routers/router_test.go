package routers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/internal/routers/api_router"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

type testServer struct {
	t      *testing.T
	app    *app.App
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	binding.Validator = validator.NewCustomValidator()

	cfg, err := app.ParseConfig(nil)
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: ":memory:", MaxIdleConns: 1, MaxOpenConns: 1})
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db, kvstore.NewMemoryStore(), app.Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	uni := ut.New(en.New(), en.New(), zh.New())
	return &testServer{t: t, app: a, engine: NewRouter(a, uni)}
}

func (s *testServer) do(method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var res envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

type savedNote struct {
	Note struct {
		ID    string   `json:"id"`
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	} `json:"note"`
	TaggingStatus string `json:"taggingStatus"`
}

func TestRouter_AnonymousNoteFlow(t *testing.T) {
	s := newTestServer(t)
	client := map[string]string{api_router.ClientIDHeader: "tab-1"}

	w := s.do(http.MethodPost, "/api/note", map[string]string{"content": "Buy milk #errand/home"}, client)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	require.Equal(t, 200, res.Code, res.Details)

	var saved savedNote
	require.NoError(t, json.Unmarshal(res.Data, &saved))
	assert.Equal(t, "Buy milk", saved.Note.Title)
	assert.Equal(t, []string{"errand/home"}, saved.Note.Tags)
	assert.Equal(t, "disabled", saved.TaggingStatus)

	w = s.do(http.MethodPost, "/api/note", map[string]string{"content": "See [[note:" + saved.Note.ID + "]] #other"}, client)
	require.Equal(t, 200, decode(t, w).Code)

	t.Run("list filtered by tag", func(t *testing.T) {
		res := decode(t, s.do(http.MethodGet, "/api/notes?tags=errand/home", nil, client))
		require.Equal(t, 200, res.Code)
		var list struct {
			List  []map[string]any `json:"list"`
			Pager struct {
				TotalRows int `json:"totalRows"`
			} `json:"pager"`
		}
		require.NoError(t, json.Unmarshal(res.Data, &list))
		assert.Len(t, list.List, 1)
		assert.Equal(t, 1, list.Pager.TotalRows)
	})

	t.Run("other client sees nothing", func(t *testing.T) {
		res := decode(t, s.do(http.MethodGet, "/api/notes", nil, map[string]string{api_router.ClientIDHeader: "tab-2"}))
		require.Equal(t, 200, res.Code)
		assert.Contains(t, string(res.Data), `"totalRows":0`)
	})

	t.Run("backlinks", func(t *testing.T) {
		res := decode(t, s.do(http.MethodGet, "/api/note/backlinks?id="+saved.Note.ID, nil, client))
		require.Equal(t, 200, res.Code)
		var notes []map[string]any
		require.NoError(t, json.Unmarshal(res.Data, &notes))
		assert.Len(t, notes, 1)
	})

	t.Run("tag tree", func(t *testing.T) {
		res := decode(t, s.do(http.MethodGet, "/api/tags/tree", nil, client))
		require.Equal(t, 200, res.Code)
		assert.Contains(t, string(res.Data), `"fullPath":"errand/home"`)
	})

	t.Run("export", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/notes/export", nil, client)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "flownote_notes_")
		assert.Contains(t, w.Body.String(), "Buy milk #errand/home")
	})

	t.Run("delete then render shows not found", func(t *testing.T) {
		res := decode(t, s.do(http.MethodDelete, "/api/note?id="+saved.Note.ID, nil, client))
		require.Equal(t, 200, res.Code)

		res = decode(t, s.do(http.MethodGet, "/api/note?id="+saved.Note.ID, nil, client))
		assert.Equal(t, 2002, res.Code)
	})
}

func TestRouter_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		target   string
		body     any
		wantCode int
	}{
		{name: "missing id", method: http.MethodGet, target: "/api/note", wantCode: 405},
		{name: "bad tag filter", method: http.MethodGet, target: "/api/notes?tags=a//b", wantCode: 405},
		{name: "empty content", method: http.MethodPost, target: "/api/note", body: map[string]string{"content": "   "}, wantCode: 2001},
		{name: "export without notes", method: http.MethodGet, target: "/api/notes/export", wantCode: 2006},
		{name: "unknown route", method: http.MethodGet, target: "/api/nope", wantCode: 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decode(t, s.do(tt.method, tt.target, tt.body, nil))
			assert.Equal(t, tt.wantCode, res.Code)
			assert.False(t, res.Status)
		})
	}
}

func TestRouter_AuthenticatedNotesAreSeparate(t *testing.T) {
	s := newTestServer(t)

	token, err := s.app.TokenManager.Generate(7, "dev", "127.0.0.1")
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + token}

	res := decode(t, s.do(http.MethodPost, "/api/note", map[string]string{"content": "Remote #r"}, auth))
	require.Equal(t, 200, res.Code, res.Details)

	res = decode(t, s.do(http.MethodGet, "/api/tags", nil, auth))
	require.Equal(t, 200, res.Code)
	assert.JSONEq(t, `["r"]`, string(res.Data))

	res = decode(t, s.do(http.MethodGet, "/api/tags", nil, nil))
	require.Equal(t, 200, res.Code)
	assert.JSONEq(t, `[]`, string(res.Data))

	res = decode(t, s.do(http.MethodGet, "/api/tags", nil, map[string]string{"Authorization": "Bearer nope"}))
	assert.Equal(t, 1002, res.Code)
}

func TestRouter_ParseAndSystem(t *testing.T) {
	s := newTestServer(t)

	res := decode(t, s.do(http.MethodPost, "/api/parse", map[string]string{"content": "Plan #work/q3 [[note:abc]]"}, nil))
	require.Equal(t, 200, res.Code)
	var parsed struct {
		Title    string           `json:"title"`
		Tags     []string         `json:"tags"`
		Mentions []map[string]any `json:"mentions"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &parsed))
	assert.Equal(t, "Plan", parsed.Title)
	assert.Equal(t, []string{"work/q3"}, parsed.Tags)
	assert.Len(t, parsed.Mentions, 1)

	w := s.do(http.MethodGet, "/api/version", nil, nil)
	assert.Equal(t, app.Version, w.Header().Get("X-App-Version"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.Contains(t, string(decode(t, w).Data), `"version":"`+app.Version+`"`)

	res = decode(t, s.do(http.MethodGet, "/api/health", nil, nil))
	assert.Equal(t, 200, res.Code, res.Details)
	assert.Contains(t, string(res.Data), `"persistence":"auto"`)
}

func TestPrivateRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		runMode string
		target  string
		want    int
	}{
		{runMode: "release", target: "/metrics", want: http.StatusOK},
		{runMode: "release", target: "/debug/vars", want: http.StatusOK},
		{runMode: "release", target: DefaultPrefix + "/", want: http.StatusNotFound},
		{runMode: "debug", target: DefaultPrefix + "/cmdline", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.runMode+tt.target, func(t *testing.T) {
			r := NewPrivateRouterWithLogger(tt.runMode, zap.NewNop())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
