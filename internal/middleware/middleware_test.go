package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, role, 5)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(c echo.Context) error {
	a := ActorFrom(c)
	return c.JSON(http.StatusOK, echo.Map{"id": a.UserID, "role": a.Role})
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	if rec := serve(e, http.MethodGet, "/me", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/me", "Bearer nope"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	rec := serve(e, http.MethodGet, "/me", token(t, 7, model.RoleAdmin))
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"id\":7,\"role\":\"admin\"}\n" {
		t.Fatalf("valid token: %d %s", rec.Code, rec.Body)
	}
}

func TestOptionalJWT(t *testing.T) {
	e := echo.New()
	e.GET("/venues", whoami, OptionalJWT(secret))

	rec := serve(e, http.MethodGet, "/venues", "Bearer expired-or-broken")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"id\":0,\"role\":\"\"}\n" {
		t.Fatalf("bad token should be anonymous: %d %s", rec.Code, rec.Body)
	}
	rec = serve(e, http.MethodGet, "/venues", token(t, 3, model.RoleUser))
	if rec.Body.String() != "{\"id\":3,\"role\":\"user\"}\n" {
		t.Fatalf("valid token: %s", rec.Body)
	}
}

func TestRequireActiveAndRole(t *testing.T) {
	st := repository.NewMemoryStore(clock.NewFake(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
	ctx := context.Background()
	ana, _ := st.Users().Create(ctx, model.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	ben, _ := st.Users().Create(ctx, model.User{Name: "Ben", Email: "ben@example.com", PasswordHash: "x"})
	_ = st.Users().SetStatus(ctx, ben, model.AccountSuspended)

	e := echo.New()
	e.GET("/admin", whoami, JWTAuth(secret), RequireActive(st.Users()), RequireRole(model.RoleAdmin))
	e.GET("/mine", whoami, JWTAuth(secret), RequireActive(st.Users()), RequireRole(model.RoleUser, model.RoleAdmin))

	// the stored role wins over the token's claim
	if rec := serve(e, http.MethodGet, "/admin", token(t, ana, model.RoleAdmin)); rec.Code != http.StatusForbidden {
		t.Fatalf("demoted admin: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/mine", token(t, ana, model.RoleUser)); rec.Code != http.StatusOK {
		t.Fatalf("active user: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/mine", token(t, ben, model.RoleUser)); rec.Code != http.StatusForbidden {
		t.Fatalf("suspended user: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/mine", token(t, 999, model.RoleUser)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: %d", rec.Code)
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(cfg, rdb, logging.Discard()))

	for i := 0; i < 2; i++ {
		if rec := serve(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: %d", i+1, rec.Code)
		}
	}
	rec := serve(e, http.MethodGet, "/ping", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("headers = %v", rec.Header())
	}
}

func TestTokenBucketPassesThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(cfg, nil, nil))
	for i := 0; i < 3; i++ {
		if rec := serve(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: %d", i+1, rec.Code)
		}
	}
}

func TestRedisCache(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
	}
	calls := 0
	e := echo.New()
	e.GET("/v1/venues", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"items": []string{"Garden Hall"}})
	}, NewRedisCache(cfg, rdb, logging.Discard()))

	first := serve(e, http.MethodGet, "/v1/venues", "")
	second := serve(e, http.MethodGet, "/v1/venues", "")
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("cache headers: %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if second.Body.String() != first.Body.String() || second.Header().Get(echo.HeaderContentType) != echo.MIMEApplicationJSON {
		t.Fatalf("cached response differs: %q %v", second.Body, second.Header())
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}

	serve(e, http.MethodGet, "/v1/venues", "Bearer whatever")
	if calls != 2 {
		t.Fatal("authenticated request was served from cache")
	}

	if err := NewCacheInvalidator(cfg, rdb).Invalidate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(mr.Keys()); n != 0 {
		t.Fatalf("keys after invalidate = %d", n)
	}
	if rec := serve(e, http.MethodGet, "/v1/venues", ""); rec.Header().Get("X-Cache") != "MISS" || calls != 3 {
		t.Fatal("invalidated entry still served")
	}

	var nilInv *CacheInvalidator
	if err := nilInv.Invalidate(context.Background()); err != nil {
		t.Fatal(err)
	}
}
