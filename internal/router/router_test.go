package router

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kscore-go/internal/config"
	"kscore-go/internal/export"
	"kscore-go/internal/models"
	"kscore-go/internal/services"
	"kscore-go/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	log := zap.NewNop()

	assessment, err := models.DefaultAssessment()
	require.NoError(t, err)
	corrector, err := services.NewDictionaryCorrector(log, "", 2)
	require.NoError(t, err)

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sess := session.New("abcd1234", func() time.Time { return clock })
	exporter := services.NewExporter(log, export.NewBuilder(log, assessment, stubRenderer{}), false)
	controller := session.NewController(log, sess, corrector, exporter)

	return Setup(log, config.ServerConfig{ExportLimit: 100}, controller, assessment)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func navigate(t *testing.T, r http.Handler, screen string) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/navigate", gin.H{"screen": screen})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func answerAll(t *testing.T, r http.Handler, kind string, items int) {
	t.Helper()
	for i := 0; i < items; i++ {
		w := do(t, r, http.MethodPost, "/api/questionnaires/"+kind, gin.H{"itemIndex": i, "score": 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := do(t, r, http.MethodPost, "/api/questionnaires/"+kind, gin.H{"difficulty": "somewhat"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCSRFProtection(t *testing.T) {
	r := newTestRouter(t)

	form := httptest.NewRequest(http.MethodPost, "/api/navigate", strings.NewReader("screen=consent"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, form)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	foreign := httptest.NewRequest(http.MethodPost, "/api/navigate", strings.NewReader(`{"screen":"consent"}`))
	foreign.Header.Set("Content-Type", "application/json")
	foreign.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, foreign)
	assert.Equal(t, http.StatusForbidden, w.Code)

	local := httptest.NewRequest(http.MethodPost, "/api/navigate", strings.NewReader(`{"screen":"consent"}`))
	local.Header.Set("Content-Type", "application/json")
	local.Header.Set("Origin", "http://127.0.0.1:5051")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, local)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "invalid transition", method: http.MethodPost, path: "/api/navigate", body: gin.H{"screen": "review"}, want: http.StatusConflict},
		{name: "keystroke without phase", method: http.MethodPost, path: "/api/keystrokes", body: gin.H{"key": "a"}, want: http.StatusConflict},
		{name: "missing key", method: http.MethodPost, path: "/api/keystrokes", body: gin.H{"code": "KeyA"}, want: http.StatusBadRequest},
		{name: "score out of range", method: http.MethodPost, path: "/api/questionnaires/phq9", body: gin.H{"itemIndex": 0, "score": 7}, want: http.StatusBadRequest},
		{name: "unknown difficulty", method: http.MethodPost, path: "/api/questionnaires/gad7", body: gin.H{"difficulty": "mild"}, want: http.StatusBadRequest},
		{name: "unknown questionnaire", method: http.MethodGet, path: "/api/questionnaires/bdi", want: http.StatusNotFound},
		{name: "export before review", method: http.MethodPost, path: "/api/export", body: gin.H{"path": "/tmp/x.zip"}, want: http.StatusConflict},
		{name: "empty selection", method: http.MethodPost, path: "/api/autocorrect", body: gin.H{"text": "abc", "selectionStart": 1, "selectionEnd": 1}, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t)
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAutocorrectReplacesSelection(t *testing.T) {
	r := newTestRouter(t)
	navigate(t, r, "consent")
	w := do(t, r, http.MethodPost, "/api/consent", gin.H{"typingConsent": true, "phqGadConsent": true, "fullName": "Jane Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	navigate(t, r, "baseline")
	navigate(t, r, "essay")

	w = do(t, r, http.MethodPost, "/api/autocorrect", gin.H{"text": "I went to schol today", "selectionStart": 10, "selectionEnd": 15})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Event models.AutocorrectEvent `json:"event"`
		Text  string                  `json:"text"`
		Caret int                     `json:"caret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "I went to school today", resp.Text)
	assert.Equal(t, 16, resp.Caret)
	assert.Equal(t, models.PhaseEssay, resp.Event.Phase)
	assert.True(t, resp.Event.Changed)

	w = do(t, r, http.MethodPost, "/api/autocorrect", gin.H{"text": "I went", "selectionStart": 0, "selectionEnd": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullStudyExport(t *testing.T) {
	r := newTestRouter(t)

	navigate(t, r, "consent")
	w := do(t, r, http.MethodPost, "/api/navigate", gin.H{"screen": "baseline"})
	assert.Equal(t, http.StatusConflict, w.Code, "consent is required first")

	w = do(t, r, http.MethodPost, "/api/consent", gin.H{"typingConsent": true, "phqGadConsent": true, "fullName": "Jane Doe"})
	require.Equal(t, http.StatusOK, w.Code)
	navigate(t, r, "baseline")

	for i, key := range []string{"h", "e", "y"} {
		w := do(t, r, http.MethodPost, "/api/keystrokes", gin.H{"key": key, "code": "Key" + strings.ToUpper(key), "timestampMs": i * 100})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	navigate(t, r, "essay")
	w = do(t, r, http.MethodPost, "/api/essay", gin.H{"text": "hey"})
	require.Equal(t, http.StatusNoContent, w.Code)
	navigate(t, r, "phq9")
	answerAll(t, r, "phq9", 9)
	navigate(t, r, "gad7")
	answerAll(t, r, "gad7", 7)
	navigate(t, r, "review")

	w = do(t, r, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var review session.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
	require.NotNil(t, review.Combined)
	assert.Equal(t, 32, *review.Combined)

	w = do(t, r, http.MethodGet, "/api/session/chart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Inter-key Intervals")

	w = do(t, r, http.MethodPost, "/api/export", gin.H{"path": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exported": false}`, w.Body.String())

	dest := filepath.Join(t.TempDir(), "participant_abcd1234.zip")
	w = do(t, r, http.MethodPost, "/api/export", gin.H{"path": dest})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 9)
}
