package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/utils"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Usage:
// r.POST("/admin/settlements/calculate", middleware.NewRateLimiter("10-1m", "calculate", rdb), handler)

// limiterKey identifies the caller: the admin subject when authenticated, else the client IP.
func limiterKey(c *gin.Context) string {
	if id, err := utils.GetAdminIDFromContext(c); err == nil {
		return "admin:" + id
	}
	return "ip:" + c.ClientIP()
}

// createStore returns a Redis-backed store shared by all instances, or a process-local one
// when rdb is nil.
func createStore(routeID string, period time.Duration, rdb *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	}
	if rdb == nil {
		return memorystore.NewStoreWithOptions(opts), nil
	}
	store, err := redisstore.NewStoreWithOptions(rdb, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
	}
	return store, nil
}

// ParseCustomRate allows formats like "10-2m", "30-20m", "5-1h", "20-10s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	if len(durationStr) < 2 {
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}
	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil || n <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	var unit time.Duration
	switch durationStr[len(durationStr)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	return limiter.Rate{Period: time.Duration(n) * unit, Limit: int64(limit)}, nil
}

func newLimiter(rateStr, routeID string, rdb *redis.Client) (*limiter.Limiter, error) {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing rate for route %s: %w", routeID, err)
	}
	store, err := createStore(routeID, rate.Period, rdb)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

func limitReached(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "RATE_LIMITED", "error": "Too many requests, slow down."})
}

// NewRateLimiter limits one route per caller. A bad rate string or store disables limiting
// for the route rather than blocking it.
func NewRateLimiter(rateStr, routeID string, rdb *redis.Client) gin.HandlerFunc {
	instance, err := newLimiter(rateStr, routeID, rdb)
	if err != nil {
		logger.ErrorLogger.Errorf("Rate limiting disabled for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	return ginmiddleware.NewMiddleware(instance,
		ginmiddleware.WithKeyGetter(limiterKey),
		ginmiddleware.WithLimitReachedHandler(limitReached),
	)
}

// CombinedRateLimiter applies several rates to the same route; the first one exceeded aborts.
// The gin driver calls c.Next itself, so the limiters are consulted directly here.
func CombinedRateLimiter(routeID string, rdb *redis.Client, rateStrings ...string) gin.HandlerFunc {
	instances := make([]*limiter.Limiter, 0, len(rateStrings))
	for i, rateStr := range rateStrings {
		instance, err := newLimiter(rateStr, fmt.Sprintf("%s_%d", routeID, i), rdb)
		if err != nil {
			logger.ErrorLogger.Errorf("Skipping rate %q for route %s: %v", rateStr, routeID, err)
			continue
		}
		instances = append(instances, instance)
	}

	return func(c *gin.Context) {
		key := limiterKey(c)
		for _, instance := range instances {
			lctx, err := instance.Get(c.Request.Context(), key)
			if err != nil {
				logger.ErrorLogger.Errorf("Rate limiter for route %s failed: %v", routeID, err)
				continue
			}
			if lctx.Reached {
				c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
				c.Header("X-RateLimit-Remaining", "0")
				c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
				limitReached(c)
				return
			}
		}
		c.Next()
	}
}
