package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geonix/geonix-web/internal/config"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/mail"
	"github.com/geonix/geonix-web/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []mail.Envelope
	failOn int // 1-based call index that fails, 0 never
	calls  int
}

func (f *fakeSender) Send(_ context.Context, env mail.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == f.failOn {
		return errors.New("smtp: 554 transaction failed")
	}
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "0",
		LogLevel:    logging.LevelInfo,
		Mail: config.MailConfig{
			Host:     "smtp.geonix.co.kr",
			Port:     465,
			Secure:   true,
			User:     "web@geonix.co.kr",
			Password: "secret",
			To:       "sales@geonix.co.kr",
			FromName: "GEONIX",
		},
		Contact: config.ContactConfig{
			TicketPrefix:    "GEONIX",
			TicketTimezone:  "UTC",
			RateLimitWindow: time.Minute,
			RateLimitMax:    3,
		},
	}
}

type testEnv struct {
	handler http.Handler
	sender  *fakeSender
	clock   *fakeClock
}

func newTestEnv(t *testing.T, cfg *config.Config, sender *fakeSender) *testEnv {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	srv, err := NewServer(cfg, Dependencies{
		Sender:  sender,
		Limiter: ratelimit.NewFixedWindow(cfg.Contact.RateLimitWindow, cfg.Contact.RateLimitMax, ratelimit.WithClock(clock.Now)),
		Logger:  logging.NewWriterLogger(io.Discard, logging.LevelError),
	})
	require.NoError(t, err)
	return &testEnv{handler: srv.Handler(), sender: sender, clock: clock}
}

func (e *testEnv) do(method, ip, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

const kimBody = `{"name":"Kim","email":"kim@x.com","message":"문의합니다"}`

func TestContact_Accepted(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.1", kimBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Regexp(t, `^GEONIX-\d{8}-[A-Z0-9]{6}$`, body["ticket"])

	require.Len(t, env.sender.sent, 2)
	assert.Equal(t, "sales@geonix.co.kr", env.sender.sent[0].To[0].Email)
	assert.Equal(t, "kim@x.com", env.sender.sent[0].ReplyTo[0].Email)
	assert.Equal(t, "kim@x.com", env.sender.sent[1].To[0].Email)
	assert.Contains(t, env.sender.sent[0].Subject, body["ticket"])
	assert.Contains(t, env.sender.sent[1].Subject, body["ticket"])
}

func TestContact_DoubleEncodedBody(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	raw, err := json.Marshal(kimBody)
	require.NoError(t, err)

	w := env.do(http.MethodPost, "203.0.113.2", string(raw))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, env.sender.Calls())
}

func TestContact_DetailsAlias(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.3", `{"name":"Kim","email":"kim@x.com","details":"유연탄 견적"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestContact_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := env.do(method, "203.0.113.4", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "method_not_allowed", decode(t, w)["error"], method)
	}
	assert.Zero(t, env.sender.Calls())
}

func TestContact_Preflight(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://geonix.co.kr")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://geonix.co.kr", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestContact_HoneypotLooksLikeSuccess(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	for i := 0; i < 5; i++ {
		w := env.do(http.MethodPost, "203.0.113.5", `{"name":"Kim","email":"kim@x.com","message":"hi","hp":"http://spam"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	}
	assert.Zero(t, env.sender.Calls())

	// Bot traffic never counts against the window
	w := env.do(http.MethodPost, "203.0.113.5", kimBody)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContact_HoneypotSkipsValidation(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.6", `{"hp":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestContact_FourthRequestRateLimited(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	for i := 0; i < 3; i++ {
		w := env.do(http.MethodPost, "203.0.113.7", kimBody)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	env.clock.Advance(20 * time.Second)
	w := env.do(http.MethodPost, "203.0.113.7", kimBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "40", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decode(t, w)["error"])
	assert.Equal(t, 6, env.sender.Calls())

	// Other clients are unaffected
	w = env.do(http.MethodPost, "203.0.113.8", kimBody)
	assert.Equal(t, http.StatusOK, w.Code)

	// The window reopens strictly after it ends
	env.clock.Advance(40 * time.Second)
	w = env.do(http.MethodPost, "203.0.113.7", kimBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	env.clock.Advance(time.Millisecond)
	w = env.do(http.MethodPost, "203.0.113.7", kimBody)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContact_InvalidRequestsCountAgainstLimit(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	for i := 0; i < 3; i++ {
		w := env.do(http.MethodPost, "203.0.113.9", `{"name":"Kim"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := env.do(http.MethodPost, "203.0.113.9", kimBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestContact_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "missing_fields"},
		{"empty object", `{}`, "missing_fields"},
		{"array body", `[]`, "missing_fields"},
		{"number body", `5`, "missing_fields"},
		{"whitespace only name", `{"name":"   ","email":"kim@x.com","message":"hi"}`, "missing_fields"},
		{"missing message", `{"name":"Kim","email":"kim@x.com"}`, "missing_fields"},
		{"invalid email", `{"name":"Kim","email":"kim@x","message":"hi"}`, "invalid_email"},
		{"missing beats invalid email", `{"email":"nope","message":"hi"}`, "missing_fields"},
		{"field too long", `{"name":"` + strings.Repeat("가", 81) + `","email":"kim@x.com","message":"hi"}`, "field_too_long"},
		{"message too long", `{"name":"Kim","email":"kim@x.com","message":"` + strings.Repeat("a", 5001) + `"}`, "message_too_long"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testConfig(), &fakeSender{})
			w := env.do(http.MethodPost, "198.51.100."+string(rune('1'+i)), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.want, decode(t, w)["error"])
			assert.Equal(t, false, decode(t, w)["ok"])
			assert.Zero(t, env.sender.Calls())
		})
	}
}

func TestContact_MalformedBody(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.10", `{"name":`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "send_failed", decode(t, w)["error"])
}

func TestContact_ServerNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Mail.Password = ""
	env := newTestEnv(t, cfg, &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.11", kimBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "server_not_configured", decode(t, w)["error"])
	assert.Zero(t, env.sender.Calls())
}

func TestContact_ValidationPrecedesConfigCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Mail.Host = ""
	env := newTestEnv(t, cfg, &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.12", `{"name":"Kim"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_fields", decode(t, w)["error"])
}

func TestContact_SendFailures(t *testing.T) {
	tests := []struct {
		name      string
		failOn    int
		wantCalls int
	}{
		{"admin notification fails", 1, 1},
		{"auto-reply fails", 2, 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testConfig(), &fakeSender{failOn: tt.failOn})

			w := env.do(http.MethodPost, "192.0.2."+string(rune('1'+i)), kimBody)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"ok":false,"error":"send_failed"}`, w.Body.String())
			assert.Equal(t, tt.wantCalls, env.sender.Calls())
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "dev", body["version"])
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["error"])
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, testConfig(), &fakeSender{})

	w := env.do(http.MethodPost, "203.0.113.13", kimBody)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	srv, err := NewServer(cfg, Dependencies{
		Sender: &fakeSender{},
		Logger: logging.NewWriterLogger(io.Discard, logging.LevelError),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
