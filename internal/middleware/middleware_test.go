package middleware

import (
    "net/http"
    "net/http/httptest"
    "sync"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/festa-do-viso/internal/config"
    "github.com/iliyamo/festa-do-viso/internal/model"
    "github.com/iliyamo/festa-do-viso/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func serve(e *echo.Echo, method, target, bearer string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    if bearer != "" {
        req.Header.Set("Authorization", "Bearer "+bearer)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuthAndRequireRole(t *testing.T) {
    const secret = "s3cret"
    e := echo.New()
    e.GET("/admin", func(c echo.Context) error {
        id, ok := AdminID(c)
        if !ok {
            return c.NoContent(http.StatusTeapot)
        }
        return c.JSON(http.StatusOK, echo.Map{"admin_id": id})
    }, JWTAuth(secret), RequireRole(model.RoleAdmin))
    e.GET("/open", func(c echo.Context) error {
        if _, ok := AdminID(c); ok {
            return c.NoContent(http.StatusTeapot)
        }
        return c.String(http.StatusOK, currentUserID(c))
    }, RequireRole(model.RoleAdmin))

    good, err := utils.NewAccessToken(secret, 42, "admin", model.RoleAdmin, 5)
    if err != nil {
        t.Fatal(err)
    }
    wrongRole, _ := utils.NewAccessToken(secret, 42, "admin", "GUEST", 5)
    forged, _ := utils.NewAccessToken("other", 42, "admin", model.RoleAdmin, 5)

    tests := []struct {
        name   string
        path   string
        bearer string
        want   int
    }{
        {"valid admin", "/admin", good.Token, http.StatusOK},
        {"missing header", "/admin", "", http.StatusUnauthorized},
        {"bad signature", "/admin", forged.Token, http.StatusUnauthorized},
        {"garbage", "/admin", "not.a.jwt", http.StatusUnauthorized},
        {"wrong role", "/admin", wrongRole.Token, http.StatusForbidden},
        {"role without auth", "/open", "", http.StatusForbidden},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            rec := serve(e, http.MethodGet, tt.path, tt.bearer)
            if rec.Code != tt.want {
                t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
            }
        })
    }
}

func TestRateLimitBlocksAfterCapacity(t *testing.T) {
    _, rdb := newRedis(t)
    cfg := config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        TTL:            time.Minute,
        KeyStrategy:    "ip_route",
        Prefix:         "rl",
    }
    e := echo.New()
    e.POST("/v1/sheets/:id/claims", func(c echo.Context) error {
        return c.NoContent(http.StatusCreated)
    }, RateLimit(cfg, rdb))

    for i := 0; i < 2; i++ {
        if rec := serve(e, http.MethodPost, "/v1/sheets/1/claims", ""); rec.Code != http.StatusCreated {
            t.Fatalf("request %d: status %d", i+1, rec.Code)
        }
    }
    // Another sheet id maps to the same route bucket.
    rec := serve(e, http.MethodPost, "/v1/sheets/2/claims", "")
    if rec.Code != http.StatusTooManyRequests {
        t.Fatalf("expected 429, got %d", rec.Code)
    }
    if rec.Header().Get("Retry-After") == "" {
        t.Error("missing Retry-After")
    }
    if rec.Header().Get("X-RateLimit-Remaining") != "0" {
        t.Errorf("remaining = %q", rec.Header().Get("X-RateLimit-Remaining"))
    }
}

func TestTokenBucketRefills(t *testing.T) {
    _, rdb := newRedis(t)
    cfg := config.RateLimitConfig{Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}
    b := NewTokenBucket(cfg, rdb)
    now := time.Date(2026, 10, 16, 22, 0, 0, 0, time.UTC)
    b.now = func() time.Time { return now }

    ctx := t.Context()
    if d, err := b.Take(ctx, "k"); err != nil || !d.Allowed {
        t.Fatalf("first take: %+v, %v", d, err)
    }
    d, err := b.Take(ctx, "k")
    if err != nil || d.Allowed || d.RetryAfter != time.Second {
        t.Fatalf("second take: %+v, %v", d, err)
    }
    now = now.Add(1500 * time.Millisecond)
    if d, err := b.Take(ctx, "k"); err != nil || !d.Allowed {
        t.Fatalf("after refill: %+v, %v", d, err)
    }
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
    e := echo.New()
    e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
        RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 0}, nil))
    for i := 0; i < 3; i++ {
        if rec := serve(e, http.MethodGet, "/x", ""); rec.Code != http.StatusOK {
            t.Fatalf("status %d", rec.Code)
        }
    }
}

func TestCacheHitAndInvalidate(t *testing.T) {
    _, rdb := newRedis(t)
    cfg := config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        KeyStrategy:  "route_query",
        Prefix:       "cache",
        MaxBodyBytes: 1 << 20,
    }
    rc := NewResponseCache(cfg, rdb)

    calls := 0
    e := echo.New()
    e.Use(InvalidateOnWrite(rc))
    e.GET("/v1/stats", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"calls": calls})
    }, Cache(rc))
    e.POST("/v1/sheets/1/claims", func(c echo.Context) error {
        return c.NoContent(http.StatusCreated)
    })
    e.POST("/v1/fail", func(c echo.Context) error {
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    })

    first := serve(e, http.MethodGet, "/v1/stats", "")
    if first.Header().Get("X-Cache") != "MISS" {
        t.Fatalf("first X-Cache = %q", first.Header().Get("X-Cache"))
    }
    second := serve(e, http.MethodGet, "/v1/stats", "")
    if second.Header().Get("X-Cache") != "HIT" || second.Body.String() != first.Body.String() || calls != 1 {
        t.Fatalf("expected cached body, got %q (calls=%d)", second.Body.String(), calls)
    }
    if second.Header().Get(echo.HeaderContentType) != echo.MIMEApplicationJSON {
        t.Errorf("content type lost: %q", second.Header().Get(echo.HeaderContentType))
    }

    serve(e, http.MethodPost, "/v1/fail", "")
    if rec := serve(e, http.MethodGet, "/v1/stats", ""); rec.Header().Get("X-Cache") != "HIT" {
        t.Error("failed write invalidated the cache")
    }

    serve(e, http.MethodPost, "/v1/sheets/1/claims", "")
    third := serve(e, http.MethodGet, "/v1/stats", "")
    if third.Header().Get("X-Cache") != "MISS" || calls != 2 {
        t.Errorf("expected miss after write, got %q (calls=%d)", third.Header().Get("X-Cache"), calls)
    }
}

func TestCacheSkipsResponseReadBeforeWrite(t *testing.T) {
    _, rdb := newRedis(t)
    rc := NewResponseCache(config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        TTL:          time.Minute,
        KeyStrategy:  "route",
        Prefix:       "cache",
        MaxBodyBytes: 1 << 20,
    }, rdb)

    var (
        mu      sync.Mutex
        state   = "free"
        blocked = true
    )
    entered := make(chan struct{})
    release := make(chan struct{})

    e := echo.New()
    e.Use(InvalidateOnWrite(rc))
    e.GET("/v1/sheets/1/numbers/7", func(c echo.Context) error {
        mu.Lock()
        seen, wait := state, blocked
        blocked = false
        mu.Unlock()
        if wait {
            close(entered)
            <-release
        }
        return c.JSON(http.StatusOK, echo.Map{"state": seen})
    }, Cache(rc))
    e.POST("/v1/sheets/1/claims", func(c echo.Context) error {
        mu.Lock()
        state = "taken"
        mu.Unlock()
        return c.NoContent(http.StatusCreated)
    })

    done := make(chan *httptest.ResponseRecorder)
    go func() { done <- serve(e, http.MethodGet, "/v1/sheets/1/numbers/7", "") }()
    <-entered
    if rec := serve(e, http.MethodPost, "/v1/sheets/1/claims", ""); rec.Code != http.StatusCreated {
        t.Fatalf("claim status = %d", rec.Code)
    }
    close(release)
    if slow := <-done; slow.Body.String() != "{\"state\":\"free\"}\n" {
        t.Fatalf("slow read body = %q", slow.Body.String())
    }

    rec := serve(e, http.MethodGet, "/v1/sheets/1/numbers/7", "")
    if rec.Header().Get("X-Cache") != "MISS" || rec.Body.String() != "{\"state\":\"taken\"}\n" {
        t.Fatalf("read after write: X-Cache=%q body=%q", rec.Header().Get("X-Cache"), rec.Body.String())
    }
    if again := serve(e, http.MethodGet, "/v1/sheets/1/numbers/7", ""); again.Header().Get("X-Cache") != "HIT" {
        t.Errorf("fresh response was not cached: %q", again.Header().Get("X-Cache"))
    }
}

func TestNewResponseCacheDisabled(t *testing.T) {
    if rc := NewResponseCache(config.CacheConfig{Enabled: false}, redis.NewClient(&redis.Options{})); rc != nil {
        t.Error("expected nil cache when disabled")
    }
    if rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil); rc != nil {
        t.Error("expected nil cache without redis")
    }
}
