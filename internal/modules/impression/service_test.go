package impression

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adservice/internal/cache"
	"adservice/internal/domain"
	"adservice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAds struct {
	mock.Mock
}

func (m *MockAds) GetByID(ctx context.Context, id int64) (*domain.Ad, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ad), args.Error(1)
}

type MockImpressions struct {
	mock.Mock
}

func (m *MockImpressions) InsertImpression(ctx context.Context, imp *domain.Impression) error {
	args := m.Called(ctx, imp)
	if imp != nil {
		imp.ID = 501 // simulate DB insert
	}
	return args.Error(0)
}

type MockSelections struct {
	mock.Mock
}

func (m *MockSelections) Get(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

type countingObserver struct{ n int }

func (o *countingObserver) ObserveImpression() { o.n++ }

var fixedNow = time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)

func newTestService(ads *MockAds, imps *MockImpressions) *Service {
	svc := NewService(ads, imps, nil, 80)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestRecordImpression_DerivesCompletion(t *testing.T) {
	cases := []struct {
		watched int
		want    bool
	}{
		{watched: 0, want: false},
		{watched: 23, want: false},
		{watched: 24, want: true},
		{watched: 30, want: true},
		{watched: 45, want: true},
		{watched: math.MaxInt, want: true},
	}

	for _, tc := range cases {
		ads := new(MockAds)
		imps := new(MockImpressions)
		ads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Ad{ID: 1, DurationSeconds: 30}, nil)
		imps.On("InsertImpression", mock.Anything, mock.AnythingOfType("*domain.Impression")).Return(nil)

		imp, err := newTestService(ads, imps).RecordImpression(context.Background(), 1, 10, "AA:BB:CC:DD:EE:FF", tc.watched, nil)

		require.NoError(t, err)
		assert.Equal(t, tc.want, imp.Completed, "watched=%d", tc.watched)
	}
}

func TestRecordImpression_ExplicitCompletionWins(t *testing.T) {
	ads := new(MockAds)
	imps := new(MockImpressions)
	ads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Ad{ID: 1, DurationSeconds: 30}, nil)
	imps.On("InsertImpression", mock.Anything, mock.Anything).Return(nil)

	done := false
	imp, err := newTestService(ads, imps).RecordImpression(context.Background(), 1, 10, "aa:bb:cc:dd:ee:ff", 30, &done)

	require.NoError(t, err)
	assert.False(t, imp.Completed)
}

func TestRecordImpression_StoresNormalizedRecord(t *testing.T) {
	ads := new(MockAds)
	imps := new(MockImpressions)
	obs := &countingObserver{}
	ads.On("GetByID", mock.Anything, int64(4)).Return(&domain.Ad{ID: 4, DurationSeconds: 20}, nil)
	imps.On("InsertImpression", mock.Anything, mock.MatchedBy(func(imp *domain.Impression) bool {
		return imp.AdID == 4 &&
			imp.SessionID == 77 &&
			imp.MACAddress == "aa:bb:cc:dd:ee:ff" &&
			imp.ImpressionTime.Equal(fixedNow) &&
			imp.WatchedDurationSeconds == 20 &&
			imp.Completed
	})).Return(nil).Once()

	svc := newTestService(ads, imps)
	svc.SetObserver(obs)

	imp, err := svc.RecordImpression(context.Background(), 4, 77, "aabbccddeeff", 20, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(501), imp.ID)
	assert.Equal(t, 1, obs.n)
	imps.AssertExpectations(t)
}

func TestRecordImpression_DuplicatesAreAppended(t *testing.T) {
	ads := new(MockAds)
	imps := new(MockImpressions)
	ads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Ad{ID: 1, DurationSeconds: 30}, nil)
	imps.On("InsertImpression", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ads, imps)
	for i := 0; i < 2; i++ {
		_, err := svc.RecordImpression(context.Background(), 1, 10, "aa:bb:cc:dd:ee:ff", 30, nil)
		require.NoError(t, err)
	}

	imps.AssertNumberOfCalls(t, "InsertImpression", 2)
}

func TestRecordImpression_AdNotFound(t *testing.T) {
	ads := new(MockAds)
	imps := new(MockImpressions)
	ads.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)

	_, err := newTestService(ads, imps).RecordImpression(context.Background(), 99, 1, "aa:bb:cc:dd:ee:ff", 5, nil)

	assert.ErrorIs(t, err, ErrAdNotFound)
	imps.AssertNotCalled(t, "InsertImpression", mock.Anything, mock.Anything)
}

func TestRecordImpression_Validation(t *testing.T) {
	svc := newTestService(new(MockAds), new(MockImpressions))
	ctx := context.Background()

	_, err := svc.RecordImpression(ctx, 0, 1, "aa:bb:cc:dd:ee:ff", 5, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordImpression(ctx, 1, 1, "aa:bb:cc:dd:ee:ff", -1, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordImpression(ctx, 1, 1, "bogus", 5, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordImpression_StorageErrorPropagates(t *testing.T) {
	ads := new(MockAds)
	imps := new(MockImpressions)
	ads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Ad{ID: 1, DurationSeconds: 30}, nil)
	imps.On("InsertImpression", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := newTestService(ads, imps).RecordImpression(context.Background(), 1, 1, "aa:bb:cc:dd:ee:ff", 5, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAdNotFound)
}

func TestRecordImpression_CachedSelectionIsAdvisory(t *testing.T) {
	for _, cached := range []struct {
		id  int64
		err error
	}{
		{id: 2},
		{err: cache.ErrMiss},
		{err: errors.New("redis down")},
	} {
		ads := new(MockAds)
		imps := new(MockImpressions)
		sel := new(MockSelections)
		ads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Ad{ID: 1, DurationSeconds: 30}, nil)
		imps.On("InsertImpression", mock.Anything, mock.Anything).Return(nil)
		sel.On("Get", mock.Anything, "10").Return(cached.id, cached.err)

		svc := NewService(ads, imps, sel, 80)
		_, err := svc.RecordImpression(context.Background(), 1, 10, "aa:bb:cc:dd:ee:ff", 30, nil)

		require.NoError(t, err)
		sel.AssertExpectations(t)
	}
}

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func postJSON(r *gin.Engine, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/impressions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Record_Created(t *testing.T) {
	ads := new(MockAds)
	imps := new(MockImpressions)
	ads.On("GetByID", mock.Anything, int64(1)).Return(&domain.Ad{ID: 1, DurationSeconds: 30}, nil)
	imps.On("InsertImpression", mock.Anything, mock.Anything).Return(nil)

	w := postJSON(setupRouter(newTestService(ads, imps)), gin.H{
		"ad_id":                    1,
		"session_id":               3,
		"mac_address":              "aa-bb-cc-dd-ee-ff",
		"watched_duration_seconds": 0,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"impression_id":501}`, w.Body.String())
}

func TestHandler_Record_NotFound(t *testing.T) {
	ads := new(MockAds)
	ads.On("GetByID", mock.Anything, int64(8)).Return(nil, repository.ErrNotFound)

	w := postJSON(setupRouter(newTestService(ads, new(MockImpressions))), gin.H{
		"ad_id":                    8,
		"session_id":               3,
		"mac_address":              "aa:bb:cc:dd:ee:ff",
		"watched_duration_seconds": 12,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Record_BadRequests(t *testing.T) {
	r := setupRouter(newTestService(new(MockAds), new(MockImpressions)))

	bodies := []any{
		"not json",
		gin.H{"ad_id": 1, "session_id": 3, "mac_address": "aa:bb:cc:dd:ee:ff"},
		gin.H{"ad_id": 1, "session_id": 3, "mac_address": "aa:bb:cc:dd:ee:ff", "watched_duration_seconds": -4},
		gin.H{"ad_id": 1, "session_id": 3, "mac_address": "nope", "watched_duration_seconds": 4},
		gin.H{"session_id": 3, "mac_address": "aa:bb:cc:dd:ee:ff", "watched_duration_seconds": 4},
	}
	for i, b := range bodies {
		w := postJSON(r, b)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %d", i)
	}
}
