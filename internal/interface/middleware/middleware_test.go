package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

type stubResolver struct {
	actor application.Actor
	err   error
	token string
}

func (s *stubResolver) ResolveActor(_ context.Context, token string) (application.Actor, error) {
	s.token = token
	return s.actor, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(r ActorResolver) *gin.Engine {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/me", Auth(r), func(c *gin.Context) {
		a, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
	})
	return e
}

func TestAuthMissingToken(t *testing.T) {
	w := httptest.NewRecorder()
	newAuthRouter(&stubResolver{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthenticated")
}

func TestAuthCookieToken(t *testing.T) {
	res := &stubResolver{actor: application.Actor{ID: 3, Role: entity.RoleFormateur}}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
	w := httptest.NewRecorder()
	newAuthRouter(res).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", res.token)
	assert.JSONEq(t, `{"id":3,"role":"formateur"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthBearerToken(t *testing.T) {
	res := &stubResolver{actor: application.Actor{ID: 1}}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w := httptest.NewRecorder()
	newAuthRouter(res).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", res.token)
}

func TestAuthResolverErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		body string
	}{
		{application.ErrInactiveAccount, http.StatusUnauthorized, "inactive_account"},
		{application.ErrInvalidCredentials, http.StatusUnauthorized, "unauthenticated"},
		{errors.New("redis down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
		w := httptest.NewRecorder()
		newAuthRouter(&stubResolver{err: tc.err}).ServeHTTP(w, req)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), tc.body)
	}
}

func TestRequestIDReusesHeader(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRealIPPrefersCloudflare(t *testing.T) {
	e := gin.New()
	e.Use(RealIP())
	e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.7")
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.1", w.Body.String())
}

func TestRateLimitWithoutRedisIsNoop(t *testing.T) {
	e := gin.New()
	e.GET("/", RateLimit(nil, 1, 0, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

type fakeCounter struct {
	hits map[string]int
	err  error
}

func (f *fakeCounter) Hit(_ context.Context, key string, _ time.Duration) (int, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.hits[key]++
	return f.hits[key], 30 * time.Second, nil
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	counter := &fakeCounter{hits: map[string]int{}}
	e := gin.New()
	e.GET("/login", RateLimitWith(counter, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		e.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/login", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "rate_limited")
}

func TestRateLimitFailsOpen(t *testing.T) {
	counter := &fakeCounter{err: errors.New("redis down")}
	e := gin.New()
	e.GET("/", RateLimitWith(counter, 1, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestKeyByActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("real_ip", "203.0.113.9")
	assert.Equal(t, "rl:user:anon:ip:203.0.113.9", KeyByActor()(c))
	c.Set("actor", application.Actor{ID: 42, Role: entity.RoleEtudiant})
	assert.Equal(t, "rl:user:42", KeyByActor()(c))
}

func TestAllowPrivateIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("real_ip", "192.168.1.4")
	assert.True(t, AllowAny(nil, AllowPrivateIP())(c))
	c.Set("real_ip", "8.8.8.8")
	assert.False(t, AllowPrivateIP()(c))
}

func TestRedisCounterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	counter := redisCounter{rdb: rdb}
	ctx := context.Background()

	n, ttl, err := counter.Hit(ctx, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, time.Minute, ttl)

	n, _, err = counter.Hit(ctx, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mr.FastForward(time.Minute + time.Second)
	n, _, err = counter.Hit(ctx, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
