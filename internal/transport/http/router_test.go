package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aparichit/backend/internal/auth"
	jwtpkg "aparichit/backend/internal/auth/jwt"
	"aparichit/backend/internal/config"
	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/health"
	"aparichit/backend/internal/monitoring"
	"aparichit/backend/internal/service"
	"aparichit/backend/internal/storage/filesystem"
	"aparichit/backend/internal/storage/memory"
)

// promauto registers on the process-global registry, so the metrics
// object is shared across all tests in this package.
var testMetrics = monitoring.NewMetrics()

type testEnv struct {
	router *gin.Engine
	files  *filesystem.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := t.TempDir()
	files, err := filesystem.NewStore(filepath.Join(base, "uploads"), filepath.Join(base, "backups"))
	require.NoError(t, err)

	store := memory.NewStore()
	log := zap.NewNop()

	authService := auth.NewService(store, log)
	require.NoError(t, authService.Seed("admin", "aparichit@2026"))

	complaintService := service.NewComplaintService(store, files, testMetrics, log)
	jwtManager := jwtpkg.NewManager("test-secret-key-32-chars-long-minimum!!", "aparichit", 12*time.Hour)

	cfg := &config.Config{
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 1000},
	}

	router := NewRouter(RouterDependencies{
		Config:           cfg,
		ComplaintService: complaintService,
		AuthService:      authService,
		JWTManager:       jwtManager,
		Metrics:          testMetrics,
		Health:           health.NewHealthChecker(store, log),
		Logger:           log,
		UploadDir:        files.UploadDir(),
	})

	return &testEnv{router: router, files: files}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	body := bytes.NewBufferString(`{"username":"admin","password":"aparichit@2026"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	req.Header.Set("Content-Type", "application/json")

	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func multipartComplaint(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("attachments", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("success returns token", func(t *testing.T) {
		token := env.login(t)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"admin","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/login", body)
		req.Header.Set("Content-Type", "application/json")

		w := env.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"ghost","password":"whatever"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/login", body)
		req.Header.Set("Content-Type", "application/json")

		w := env.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"admin"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/login", body)
		req.Header.Set("Content-Type", "application/json")

		w := env.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmitComplaint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("full submission with attachment", func(t *testing.T) {
		body, contentType := multipartComplaint(t, map[string]string{
			"category":      "क्रोध",
			"severity":      "9",
			"punishment":    "तम्सराज नरक में: भीषण आग से शरीर सडा दिया जाएगा",
			"reporterName":  "Ravi",
			"reporterEmail": "ravi@example.com",
			"targetName":    "Mohan",
			"identifier":    "sector-5",
			"text":          "he broke every promise",
		}, map[string][]byte{
			"proof.png": []byte("png-bytes"),
		})

		req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
		req.Header.Set("Content-Type", contentType)

		w := env.do(req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("loose fields are normalized not rejected", func(t *testing.T) {
		body, contentType := multipartComplaint(t, map[string]string{
			"category": "unknown-category",
			"severity": "not-a-number",
			"text":     "short",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
		req.Header.Set("Content-Type", contentType)

		w := env.do(req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("too many attachments", func(t *testing.T) {
		files := make(map[string][]byte)
		for i := 0; i < service.MaxAttachments+1; i++ {
			files[fmt.Sprintf("f%d.png", i)] = []byte("x")
		}
		body, contentType := multipartComplaint(t, map[string]string{"text": "t"}, files)

		req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
		req.Header.Set("Content-Type", contentType)

		w := env.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Too many files"}`, w.Body.String())
	})
}

func TestAdminEndpoints_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/complaints"},
		{http.MethodGet, "/api/export"},
		{http.MethodPost, "/api/backup"},
		{http.MethodDelete, "/api/complaints/1"},
	} {
		w := env.do(httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	// A malformed Authorization header is also rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/complaints", nil)
	req.Header.Set("Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
}

func TestListComplaints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	for i := 0; i < 2; i++ {
		body, contentType := multipartComplaint(t, map[string]string{
			"category": "लोभ",
			"severity": "8",
			"text":     fmt.Sprintf("complaint %d", i),
		}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
		req.Header.Set("Content-Type", contentType)
		require.Equal(t, http.StatusOK, env.do(req).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/complaints", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []*domain.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	// Newest first, attachments always an array.
	assert.Equal(t, int64(2), list[0].ID)
	assert.NotNil(t, list[0].Attachments)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	body, contentType := multipartComplaint(t, map[string]string{
		"category": "छल", "severity": "8", "text": "deceived everyone",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusOK, env.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	disposition := w.Header().Get("Content-Disposition")
	assert.Regexp(t, `^attachment; filename=aparichit_export_\d{4}-\d{2}-\d{2}\.json$`, disposition)

	var snap domain.ExportSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.ExportedAt)
	require.Len(t, snap.Complaints, 1)
	assert.Equal(t, "छल", snap.Complaints[0].Category)
}

func TestBackup(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/backup", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK   bool   `json:"ok"`
		File string `json:"file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Regexp(t, `^backup_\d+.*\.json$`, resp.File)

	names, err := env.files.ListBackups()
	require.NoError(t, err)
	assert.Contains(t, names, resp.File)
}

func TestDeleteComplaint(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	body, contentType := multipartComplaint(t, map[string]string{
		"category": "अहंकार", "severity": "7", "text": "too proud",
	}, map[string][]byte{"pic.jpg": []byte("jpg")})
	req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusOK, env.do(req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/complaints/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	// Gone now.
	req = httptest.NewRequest(http.MethodDelete, "/api/complaints/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, env.do(req).Code)
}

func TestCategories_Public(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cats map[string]struct {
		Severity    int      `json:"severity"`
		Punishments []string `json:"punishments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	assert.Len(t, cats, 8)
	assert.Equal(t, 10, cats["अधर्म"].Severity)
	assert.NotEmpty(t, cats["क्रोध"].Punishments)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var results map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Equal(t, "OK", results["database"])
}
