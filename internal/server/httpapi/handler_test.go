package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/dmitrijs2005/magiclink/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedeemer accepts exactly one (endpoint, key) pair once.
type fakeRedeemer struct {
	mu       sync.Mutex
	endpoint string
	key      string
	used     bool
	err      error
}

func (f *fakeRedeemer) Redeem(_ context.Context, endpoint, publicKey string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.used || endpoint != f.endpoint || publicKey != f.key {
		return nil, common.ErrRedemptionRejected
	}
	f.used = true
	return &services.Session{
		AccountID: 42,
		Token:     "session-token",
		TTL:       time.Hour,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// recordingLogger keeps every message and its args as text.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.log(msg, args...) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.log(msg, args...) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.log(msg, args...) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.log(msg, args...) }
func (l *recordingLogger) With(...any) logging.Logger                       { return l }

func (l *recordingLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

func newServer(t *testing.T, r Redeemer, p Pinger, opts Options, logger logging.Logger) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(r, p, opts, logger)))
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
}

type snapshot struct {
	status int
	header http.Header
	body   string
}

func get(t *testing.T, url string) snapshot {
	t.Helper()
	resp, err := noRedirectClient().Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	h := resp.Header.Clone()
	h.Del("Date")
	return snapshot{status: resp.StatusCode, header: h, body: string(b)}
}

func TestRedeem_SuccessSetsCookieAndRedirects(t *testing.T) {
	red := &fakeRedeemer{endpoint: "abc123", key: "aa-bb-cc"}
	srv := newServer(t, red, nil, Options{HomeURL: "https://example.com/", AfterLoginPath: "/wp-admin/"}, nil)

	resp, err := noRedirectClient().Get(srv.URL + "/abc123/aa-bb-cc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/wp-admin/", resp.Header.Get("Location"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, common.SessionCookieName, c.Name)
	assert.Equal(t, "session-token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestRedeem_InsecureHomeURLCookie(t *testing.T) {
	red := &fakeRedeemer{endpoint: "e", key: "k"}
	srv := newServer(t, red, nil, Options{HomeURL: "http://localhost:8080"}, nil)

	resp, err := noRedirectClient().Get(srv.URL + "/e/k")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://localhost:8080/", resp.Header.Get("Location"))
	require.Len(t, resp.Cookies(), 1)
	assert.False(t, resp.Cookies()[0].Secure)
}

func TestRedeem_RejectionsLookLikeUnknownRoutes(t *testing.T) {
	red := &fakeRedeemer{endpoint: "abc123", key: "aa-bb-cc"}
	srv := newServer(t, red, nil, Options{HomeURL: "https://example.com"}, nil)

	first := get(t, srv.URL+"/abc123/aa-bb-cc")
	require.Equal(t, http.StatusFound, first.status)

	unknownRoute := get(t, srv.URL+"/no/such/route")
	require.Equal(t, http.StatusNotFound, unknownRoute.status)

	for name, path := range map[string]string{
		"replayed key":   "/abc123/aa-bb-cc",
		"wrong endpoint": "/zzz999/aa-bb-cc",
		"unknown key":    "/abc123/00-00-00",
	} {
		got := get(t, srv.URL+path)
		assert.Equal(t, unknownRoute, got, name)
	}
}

func TestRedeem_StorageFaultIs500(t *testing.T) {
	red := &fakeRedeemer{err: fmt.Errorf("%w: take token: %w", common.ErrStorageFault, errors.New("down"))}
	srv := newServer(t, red, nil, Options{HomeURL: "https://example.com"}, nil)

	got := get(t, srv.URL+"/abc123/aa-bb-cc")
	assert.Equal(t, http.StatusInternalServerError, got.status)
}

func TestRedeem_RateLimit(t *testing.T) {
	red := &fakeRedeemer{endpoint: "e", key: "k"}
	srv := newServer(t, red, nil, Options{HomeURL: "https://example.com", RedeemRateLimit: 2}, nil)

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/x/1").status)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/x/2").status)
	assert.Equal(t, http.StatusTooManyRequests, get(t, srv.URL+"/x/3").status)

	// health is not throttled
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/healthz").status)
}

func TestHealthz(t *testing.T) {
	ok := newServer(t, &fakeRedeemer{}, fakePinger{}, Options{HomeURL: "https://example.com"}, nil)
	got := get(t, ok.URL+"/healthz")
	assert.Equal(t, http.StatusOK, got.status)
	assert.Equal(t, "ok", got.body)

	down := newServer(t, &fakeRedeemer{}, fakePinger{err: errors.New("redis down")}, Options{HomeURL: "https://example.com"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, down.URL+"/healthz").status)
}

type panicky struct{}

func (panicky) Redeem(context.Context, string, string) (*services.Session, error) {
	panic("boom")
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	srv := newServer(t, panicky{}, nil, Options{HomeURL: "https://example.com"}, nil)
	assert.Equal(t, http.StatusInternalServerError, get(t, srv.URL+"/a/b").status)
}

func TestRequestLogger_DoesNotLogSecrets(t *testing.T) {
	logger := &recordingLogger{}
	red := &fakeRedeemer{endpoint: "topsecret-endpoint", key: "deadbeef-key"}
	srv := newServer(t, red, nil, Options{HomeURL: "https://example.com"}, logger)

	require.Equal(t, http.StatusFound, get(t, srv.URL+"/topsecret-endpoint/deadbeef-key").status)

	out := logger.String()
	assert.Contains(t, out, "/{endpoint}/{publicKey}")
	assert.NotContains(t, out, "topsecret-endpoint")
	assert.NotContains(t, out, "deadbeef-key")
}
