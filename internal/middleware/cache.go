package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/google/logger"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/festa-do-viso/internal/config"
)

// ResponseCache stores successful read responses in Redis.  Every entry
// lives under cfg.Prefix and carries the cache generation in its key.
// Invalidate bumps the generation, so a response computed before a write
// can only be stored under a generation no reader asks for any more.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

// NewResponseCache returns nil when caching is disabled or Redis is
// unavailable; the middleware constructors accept a nil cache.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
    if !cfg.Enabled || rdb == nil {
        return nil
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return &ResponseCache{cfg: cfg, rdb: rdb}
}

type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// bodyRecorder tees the response body into buf up to limit bytes.
type bodyRecorder struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int
    truncated bool
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if !w.truncated {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.truncated = true
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) genKey() string { return rc.cfg.Prefix + ":gen" }

// generation returns the current cache generation, 0 before the first write.
func (rc *ResponseCache) generation(ctx context.Context) (int64, error) {
    n, err := rc.rdb.Get(ctx, rc.genKey()).Int64()
    if errors.Is(err, redis.Nil) {
        return 0, nil
    }
    return n, err
}

// key derives the cache key for a request from cfg.KeyStrategy.
func (rc *ResponseCache) key(c echo.Context, gen int64) string {
    r := c.Request()
    var tail string
    switch strings.ToLower(rc.cfg.KeyStrategy) {
    case "route":
        tail = "route:" + r.URL.Path
    case "method_route":
        tail = "method:" + r.Method + ":route:" + r.URL.Path
    case "method_route_query":
        tail = "method:" + r.Method + ":route:" + r.URL.Path + ":q:" + r.URL.RawQuery
    default: // route_query
        tail = "route:" + r.URL.Path + ":q:" + r.URL.RawQuery
    }
    return fmt.Sprintf("%s:%d:%x", rc.cfg.Prefix, gen, sha1.Sum([]byte(tail)))
}

// Invalidate starts a new generation and deletes the cached responses of
// the previous ones.
func (rc *ResponseCache) Invalidate(ctx context.Context) error {
    if err := rc.rdb.Incr(ctx, rc.genKey()).Err(); err != nil {
        return err
    }
    iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 200).Iterator()
    var batch []string
    for iter.Next(ctx) {
        if iter.Val() == rc.genKey() {
            continue
        }
        batch = append(batch, iter.Val())
        if len(batch) == 200 {
            if err := rc.rdb.Del(ctx, batch...).Err(); err != nil {
                return err
            }
            batch = batch[:0]
        }
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(batch) > 0 {
        return rc.rdb.Del(ctx, batch...).Err()
    }
    return nil
}

// Cache serves configured methods from Redis and stores 200 responses.
// Responses get X-Cache: HIT or MISS.
func Cache(rc *ResponseCache) echo.MiddlewareFunc {
    if rc == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            gen, err := rc.generation(ctx)
            if err != nil {
                logger.Warningf("cache: read generation: %v", err)
                return next(c)
            }
            key := rc.key(c, gen)

            if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(bs, &hit) == nil {
                    h := c.Response().Header()
                    for k, vals := range hit.Header {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            h.Add(k, v)
                        }
                    }
                    h.Set("X-Cache", "HIT")
                    c.Response().WriteHeader(hit.Status)
                    _, err := c.Response().Write(hit.Body)
                    return err
                }
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.truncated {
                return nil
            }

            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            hdr.Del(echo.HeaderXRequestID)
            payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: hdr, Body: rec.buf.Bytes()})
            if err != nil {
                return nil
            }
            if err := rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
                logger.Warningf("cache: store %s: %v", key, err)
            }
            return nil
        }
    }
}

// InvalidateOnWrite drops the cache after any request that changed state,
// i.e. a non-GET request answered with a 2xx status.
func InvalidateOnWrite(rc *ResponseCache) echo.MiddlewareFunc {
    if rc == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            m := c.Request().Method
            if m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions {
                return err
            }
            if st := c.Response().Status; err == nil && st >= 200 && st < 300 {
                if ierr := rc.Invalidate(context.WithoutCancel(c.Request().Context())); ierr != nil {
                    logger.Warningf("cache: invalidate after %s %s: %v", m, c.Path(), ierr)
                }
            }
            return err
        }
    }
}
