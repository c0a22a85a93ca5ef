package ads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"adservice/internal/domain"
	"adservice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc, svc.media)
	h.RegisterRoutes(r.Group("/api"))
	h.RegisterMediaRoutes(r)
	return r
}

func multipartRequest(t *testing.T, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("video", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte("video-bytes"))
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ads/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandler_Upload_Success(t *testing.T) {
	store := new(MockAdStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc, _ := newTestService(t, store)
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "promo.mp4", map[string]string{"name": "Promo", "weight": "3"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Ad uploaded successfully","ad_id":12}`, w.Body.String())
}

func TestHandler_Upload_InvalidType(t *testing.T) {
	store := new(MockAdStore)
	svc, _ := newTestService(t, store)
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "virus.exe", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid file type. Allowed: mp4, webm, ogg"}`, w.Body.String())
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_Upload_MissingFile(t *testing.T) {
	svc, _ := newTestService(t, new(MockAdStore))
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "", map[string]string{"name": "x"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"No video file provided"}`, w.Body.String())
}

func TestHandler_Upload_BadWeight(t *testing.T) {
	svc, _ := newTestService(t, new(MockAdStore))
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "a.mp4", map[string]string{"weight": "heavy"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateStatus(t *testing.T) {
	store := new(MockAdStore)
	store.On("UpdateStatusWeight", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(nil)
	store.On("UpdateStatusWeight", mock.Anything, int64(77), mock.Anything, mock.Anything).Return(repository.ErrNotFound)
	svc, _ := newTestService(t, store)
	r := setupRouter(svc)

	cases := []struct {
		path string
		body string
		want int
	}{
		{"/api/ads/1/status", `{"status":"inactive","weight":2}`, http.StatusOK},
		{"/api/ads/77/status", `{"status":"active"}`, http.StatusNotFound},
		{"/api/ads/1/status", `{"status":"archived"}`, http.StatusBadRequest},
		{"/api/ads/1/status", `{"weight":-1}`, http.StatusBadRequest},
		{"/api/ads/1/status", `{bad json`, http.StatusBadRequest},
		{"/api/ads/abc/status", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, tc.path, bytes.NewBufferString(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.path, tc.body)
	}
}

func TestHandler_List(t *testing.T) {
	store := new(MockAdStore)
	store.On("ListAdsWithImpressionCounts", mock.Anything).Return([]domain.AdSummary{
		{ID: 1, Name: "A", Status: domain.AdActive, Weight: 1, Impressions: 4, CompletedViews: 1, CompletionRate: 25},
	}, nil)
	svc, _ := newTestService(t, store)
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ads", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool             `json:"success"`
		Ads     []map[string]any `json:"ads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Ads, 1)
	assert.Equal(t, 25.0, body.Ads[0]["completion_rate"])
	assert.Equal(t, 1.0, body.Ads[0]["completed_views"])
}

func TestHandler_ServeMedia(t *testing.T) {
	svc, dir := newTestService(t, new(MockAdStore))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "videos"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "videos", "a.mp4"), []byte("mp4data"), 0644))
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ads/videos/a.mp4", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mp4data", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ads/videos/missing.mp4", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
