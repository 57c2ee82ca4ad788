package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/warden-data/internal/api/dto"
	"github.com/cuongbtq/warden-data/internal/api/handler"
	"github.com/cuongbtq/warden-data/internal/cache"
	"github.com/cuongbtq/warden-data/internal/domain"
	"github.com/cuongbtq/warden-data/internal/ingest"
	"github.com/cuongbtq/warden-data/internal/queue"
	"github.com/cuongbtq/warden-data/shared/logger"
)

const testToken = "tok-alice"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeUsers struct {
	err error
}

func (f *fakeUsers) GetActiveUserByToken(_ context.Context, token string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != testToken {
		return nil, domain.ErrUnauthorized
	}
	return &domain.User{ID: 7, Username: "alice", Token: token, IsActive: true}, nil
}

type submitCall struct {
	userID int64
	kind   domain.JobKind
	count  int
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []submitCall
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, userID int64, kind domain.JobKind, _ any, count int) (*ingest.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, submitCall{userID: userID, kind: kind, count: count})
	return &ingest.Receipt{TrackingID: "trk-1", Received: count}, nil
}

func newTestRouter(submitter handler.Submitter, users handler.UserResolver, q handler.QueueStats, opts Options) *gin.Engine {
	return SetupRouter(&handler.Dependencies{
		Logger:      logger.NewNop().Logger,
		ServiceName: "ingest-service",
		Ingest:      submitter,
		Queue:       q,
		Users:       users,
	}, opts)
}

func post(r http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	q := queue.New(5)
	require.NoError(t, q.Enqueue(context.Background(), domain.JobRecord{ID: "x"}))
	r := newTestRouter(&fakeSubmitter{}, &fakeUsers{}, q, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ingest-service", resp.Service)
	assert.Equal(t, dto.QueueStatus{Depth: 1, Capacity: 5}, resp.Queue)
}

type fakeChecker struct {
	err error
}

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

type fakeBroker struct {
	connected bool
}

func (f fakeBroker) IsConnected() bool { return f.connected }

func TestHealth_Checks(t *testing.T) {
	down := fakeChecker{err: errors.New("connection refused")}

	tests := []struct {
		name       string
		db         handler.HealthChecker
		cache      handler.HealthChecker
		broker     handler.BrokerStatus
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "all up",
			db:         fakeChecker{},
			cache:      fakeChecker{},
			broker:     fakeBroker{connected: true},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "ok", "cache": "ok", "broker": "connected"},
		},
		{
			name:       "broker disabled",
			db:         fakeChecker{},
			cache:      fakeChecker{},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "ok", "cache": "ok"},
		},
		{
			name:       "broker disconnected",
			db:         fakeChecker{},
			cache:      fakeChecker{},
			broker:     fakeBroker{connected: false},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "ok", "cache": "ok", "broker": "disconnected"},
		},
		{
			name:       "database down",
			db:         down,
			cache:      fakeChecker{},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"database": "unavailable", "cache": "ok"},
		},
		{
			name:       "cache down",
			db:         fakeChecker{},
			cache:      down,
			broker:     fakeBroker{connected: false},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"database": "ok", "cache": "unavailable", "broker": "disconnected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SetupRouter(&handler.Dependencies{
				Logger:      logger.NewNop().Logger,
				ServiceName: "ingest-service",
				Ingest:      &fakeSubmitter{},
				Queue:       queue.New(2),
				Users:       &fakeUsers{},
				DB:          tt.db,
				Cache:       tt.cache,
				Broker:      tt.broker,
			}, Options{})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.wantCode, w.Code)

			var resp dto.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestIngest_Endpoints(t *testing.T) {
	tests := []struct {
		path string
		body string
		kind domain.JobKind
	}{
		{"/api/data/orders", `[{"id":1,"name":"exo pa"},{"id":2,"name":"exo pm"}]`, domain.JobKindOrder},
		{"/api/data/order-effects", `[{"id":1,"order_id":1,"effect_name":"Force","min_value":1,"max_value":10,"desired_value":8}]`, domain.JobKindOrderEffect},
		{"/api/data/sessions", `[{"id":1,"order_id":1,"timestamp":1,"initial_effects":"[]","runes_prices":"[]"}]`, domain.JobKindSession},
		{"/api/data/rune-history", `[{"id":1,"session_id":1,"rune_id":3,"is_tenta":true,"effects_after":[],"has_succeed":false}]`, domain.JobKindRuneHistory},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			sub := &fakeSubmitter{}
			r := newTestRouter(sub, &fakeUsers{}, queue.New(1), Options{})

			w := post(r, tt.path, tt.body, bearer(testToken))
			require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

			var resp dto.AcceptedResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "trk-1", resp.TrackingID)

			require.Len(t, sub.calls, 1)
			assert.Equal(t, tt.kind, sub.calls[0].kind)
			assert.Equal(t, int64(7), sub.calls[0].userID)
			assert.Equal(t, resp.Received, sub.calls[0].count)
		})
	}
}

func TestIngest_Auth(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		users    *fakeUsers
		wantCode int
	}{
		{"bearer token", bearer(testToken), &fakeUsers{}, http.StatusAccepted},
		{"api token header", map[string]string{"X-Api-Token": testToken}, &fakeUsers{}, http.StatusAccepted},
		{"missing token", nil, &fakeUsers{}, http.StatusUnauthorized},
		{"unknown token", bearer("nope"), &fakeUsers{}, http.StatusUnauthorized},
		{"basic scheme", map[string]string{"Authorization": "Basic " + testToken}, &fakeUsers{}, http.StatusUnauthorized},
		{"resolver failure", bearer(testToken), &fakeUsers{err: errors.New("db down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubmitter{}
			r := newTestRouter(sub, tt.users, queue.New(1), Options{})

			w := post(r, "/api/data/orders", `[{"id":1,"name":"a"}]`, tt.headers)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusAccepted {
				assert.Empty(t, sub.calls)
			}
		})
	}
}

func TestIngest_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"null", `null`},
		{"not an array", `{"id":1,"name":"a"}`},
		{"malformed json", `[{"id":1,`},
		{"missing required field", `[{"id":1}]`},
		{"name too long", `[{"id":1,"name":"` + string(bytes.Repeat([]byte("x"), 256)) + `"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubmitter{}
			r := newTestRouter(sub, &fakeUsers{}, queue.New(1), Options{})

			w := post(r, "/api/data/orders", tt.body, bearer(testToken))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, sub.calls)
		})
	}
}

func TestIngest_SubmitErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"cache write failure", domain.ErrCacheWrite, http.StatusInternalServerError},
		{"queue full and caller gone", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeSubmitter{err: tt.err}, &fakeUsers{}, queue.New(1), Options{})

			w := post(r, "/api/data/orders", `[{"id":1,"name":"a"}]`, bearer(testToken))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestIngest_BodyLimit(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(sub, &fakeUsers{}, queue.New(1), Options{MaxBodyBytes: 16})

	w := post(r, "/api/data/orders", `[{"id":1,"name":"a very long order name"}]`, bearer(testToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sub.calls)
}

func TestIngest_RateLimit(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(sub, &fakeUsers{}, queue.New(1), Options{RequestsPerSecond: 0.001, Burst: 1})

	w := post(r, "/api/data/orders", `[{"id":1,"name":"a"}]`, bearer(testToken))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = post(r, "/api/data/orders", `[{"id":1,"name":"a"}]`, bearer(testToken))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Len(t, sub.calls, 1)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(&fakeSubmitter{}, &fakeUsers{}, queue.New(1), Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/data/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIngest_StagesAndEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q := queue.New(3)
	staging := cache.NewRedisCache(rdb, "")
	svc := ingest.NewService(staging, q, time.Hour, logger.NewNop().Logger)
	r := newTestRouter(svc, &fakeUsers{}, q, Options{})

	body := `[{"id":1,"order_id":7,"timestamp":5,"initial_effects":[{"effect_name":"Fo","current_value":3}],"runes_prices":"[]"}]`
	w := post(r, "/api/data/sessions", body, bearer(testToken))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp dto.AcceptedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Received)

	require.Equal(t, 1, q.Len())
	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resp.TrackingID, job.ID)
	assert.Equal(t, domain.JobKindSession, job.Kind)
	assert.Equal(t, int64(7), job.UserID)

	// nested fields are staged as text whatever shape they arrived in
	value, found, err := staging.Get(context.Background(), job.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(value), `"initial_effects":"[{\"effect_name\":\"Fo\",\"current_value\":3}]"`)
}
