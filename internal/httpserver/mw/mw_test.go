package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRequireOwner(t *testing.T) {
	const secret = "mw-secret"
	token, err := auth.Issue(secret, "alice", time.Hour)
	require.NoError(t, err)
	expired, err := auth.Issue(secret, "alice", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	var gotOwner string
	h := RequireOwner(auth.NewVerifier(secret), logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, _ = auth.OwnerFrom(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOwner = ""
			r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, r)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice", gotOwner)
			} else {
				assert.Empty(t, gotOwner)
				assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.Nop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/infra", nil)
	r.RemoteAddr = "10.1.1.1:1234"
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)

	open := AllowOnlyCIDRS(nil, false, logger.Nop())(okHandler)
	assert.Equal(t, http.StatusOK, serve(open, r).Code)
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"marks.example.com", "marks.example.com", true},
		{"marks.example.com:8080", "marks.example.com", true},
		{"marks.example.com:8080", "marks.example.com:9090", false},
		{"MARKS.example.com", "marks.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil.com", "marks.example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchHost(tt.host, tt.pattern), "%s vs %s", tt.host, tt.pattern)
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"marks.local"}, logger.Nop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	r.Host = "marks.local:8080"
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r.Host = "other.local"
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example"})(okHandler)

	t.Run("preflight", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/bookmarks", nil)
		r.Header.Set("Origin", "https://app.example")
		r.Header.Set("Access-Control-Request-Method", "POST")
		rec := serve(h, r)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
		r.Header.Set("Origin", "https://app.example")
		rec := serve(h, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
		r.Header.Set("Origin", "https://evil.example")
		rec := serve(h, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
		r.Header.Set("Origin", "https://anything.example")
		rec := serve(CORS([]string{"*"})(okHandler), r)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
		r.Header.Set("Origin", "https://app.example")
		rec := serve(CORS(nil)(okHandler), r)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler)

	req := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil)
		r.RemoteAddr = ip + ":5000"
		return serve(h, r)
	}

	assert.Equal(t, http.StatusOK, req("1.1.1.1").Code)
	rec := req("1.1.1.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = req("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, req("2.2.2.2").Code)

	// One token refills per second.
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, req("1.1.1.1").Code)
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.FromZap(zap.New(core))

	h := Log(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	serve(h, httptest.NewRequest(http.MethodDelete, "/api/bookmarks/1", nil))
	serve(h, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusNoContent, entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
}
