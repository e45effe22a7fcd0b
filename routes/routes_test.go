package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotecompare/internal/handlers"
	"quotecompare/internal/metrics"
	"quotecompare/internal/middleware"
	"quotecompare/internal/repositories/memory"
	"quotecompare/internal/services"
	"quotecompare/pkg/logger"
	ws "quotecompare/pkg/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T, health handlers.Pinger) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logger.NewNop()
	m := metrics.New()
	store := memory.NewStore()
	if health == nil {
		health = store
	}

	stream := ws.NewHandler(ctx, log.Entry(), []string{"*"})
	referralService := services.NewReferralService(store.Users(), store.Referrals(), stream, m, log, decimal.RequireFromString("25.00"))
	signupService := services.NewSignupService(store.Signups(), referralService, m, log)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.MetricsMiddleware(m))
	SetupRoutes(router, &Handlers{
		Referral: handlers.NewReferralHandler(referralService, stream, log),
		Signup:   handlers.NewSignupHandler(signupService, log),
		Quote:    handlers.NewQuoteHandler(services.NewQuoteService()),
		Health:   handlers.NewHealthHandler(health, "test", log),
	}, "/metrics", m.Handler())

	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestReferralFlow(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/users", gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)
	code, _ := user["referralCode"].(string)
	require.Len(t, code, 8)
	assert.Equal(t, "alice@example.com", user["email"])

	again := decode(t, s.do(t, http.MethodPost, "/api/users", gin.H{"email": "Alice@Example.com"}))
	assert.Equal(t, user["id"], again["id"])
	assert.Equal(t, code, again["referralCode"])

	w = s.do(t, http.MethodPost, "/api/referrals", gin.H{
		"referrerEmail": "ignored@example.com",
		"referredEmail": "bob@example.com",
		"referralCode":  code,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	dash := decode(t, s.do(t, http.MethodGet, "/api/dashboard?email=alice@example.com", nil))
	assert.Equal(t, code, dash["referralCode"])
	assert.Equal(t, float64(0), dash["totalBonus"])
	referrals := dash["referrals"].([]interface{})
	require.Len(t, referrals, 1)
	assert.Equal(t, "pending", referrals[0].(map[string]interface{})["status"])

	w = s.do(t, http.MethodPost, "/api/signups", gin.H{
		"userEmail":    "bob@example.com",
		"companyName":  "GEICO",
		"referralCode": code,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	dash = decode(t, s.do(t, http.MethodGet, "/api/dashboard?email=alice@example.com", nil))
	assert.Equal(t, float64(25), dash["totalBonus"])
	first := dash["referrals"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "completed", first["status"])
	assert.Equal(t, float64(25), first["bonus_amount"])
	assert.NotNil(t, first["completed_at"])
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	alice := decode(t, s.do(t, http.MethodPost, "/api/users", gin.H{"email": "alice@example.com"}))
	code := alice["referralCode"].(string)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   string
	}{
		{"user without at sign", http.MethodPost, "/api/users", gin.H{"email": "alice"}, "Valid email is required"},
		{"user without email", http.MethodPost, "/api/users", gin.H{}, "Valid email is required"},
		{"referral missing code", http.MethodPost, "/api/referrals", gin.H{"referredEmail": "bob@example.com"}, "Referred email and referral code are required"},
		{"referral unknown code", http.MethodPost, "/api/referrals", gin.H{"referredEmail": "bob@example.com", "referralCode": "ZZZZ0000"}, "Invalid referral code"},
		{"self referral", http.MethodPost, "/api/referrals", gin.H{"referredEmail": "alice@example.com", "referralCode": code}, "Cannot refer yourself"},
		{"signup missing company", http.MethodPost, "/api/signups", gin.H{"userEmail": "bob@example.com"}, "User email and company name are required"},
		{"dashboard without email", http.MethodGet, "/api/dashboard", nil, "Email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["error"])
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/signups", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User email and company name are required", decode(t, w)["error"])
}

func TestOversizeInputs(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/signups", gin.H{
		"userEmail":    "bob@example.com",
		"companyName":  "GEICO",
		"referralCode": strings.Repeat("X", 65),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/signups", gin.H{
		"userEmail":   "bob@example.com",
		"companyName": strings.Repeat("c", 201),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/referrals", gin.H{
		"referredEmail": "bob@example.com",
		"referralCode":  strings.Repeat("X", 65),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid referral code", decode(t, w)["error"])
}

func TestUnknownDashboard(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/dashboard?email=nobody@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"referrals":[],"totalBonus":0,"referralCode":""}`, w.Body.String())
}

func TestQuoteRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/quotes?sortBy=price&maxPrice=90", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var quotes []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quotes))
	require.Len(t, quotes, 2)
	assert.Equal(t, "usaa", quotes[0]["id"])
	assert.Equal(t, "geico", quotes[1]["id"])

	w = s.do(t, http.MethodGet, "/api/quotes/statefarm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "State Farm", decode(t, w)["companyName"])

	w = s.do(t, http.MethodGet, "/api/quotes/acme", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Quote not found", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/api/quotes?minPrice=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"test","store":"ok"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quotecompare_http_requests_total{method="GET",route="/health",status="200"} 1`)

	down := newTestServer(t, downStore{})
	w = down.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode(t, w)["status"])
}

func TestDashboardStream(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	alice := decode(t, s.do(t, http.MethodPost, "/api/users", gin.H{"email": "alice@example.com"}))
	code := alice["referralCode"].(string)
	aliceID := int64(alice["id"].(float64))

	w := s.do(t, http.MethodGet, "/api/dashboard/ws?email=ghost@example.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/dashboard/ws?email=alice@example.com"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var welcome ws.Message
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "welcome", welcome.Type)

	s.do(t, http.MethodPost, "/api/referrals", gin.H{"referredEmail": "bob@example.com", "referralCode": code})
	s.do(t, http.MethodPost, "/api/signups", gin.H{"userEmail": "bob@example.com", "companyName": "USAA", "referralCode": code})

	var msg ws.Message
	for msg.Type != "referral_completed" {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &msg))
	}
	assert.Equal(t, aliceID, msg.UserID)
	assert.Equal(t, float64(25), msg.Data["bonus_amount"])
}
