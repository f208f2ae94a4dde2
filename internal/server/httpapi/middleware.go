package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/server/auth"
	"github.com/cinecircle/cinecircle/internal/server/services"
)

const (
	ctxRequestIDKey = "requestId"
	ctxUserIDKey    = "userID"
)

// RequestID injects a per-request uuid into the context and echoes it as a
// response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxRequestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// Auth validates the Bearer access token and injects the subject user ID.
func Auth(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(c, common.ErrInvalidToken)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil {
			writeError(c, common.ErrInvalidToken)
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

// RequireAdmin loads the authenticated requester and rejects non-admins.
// Must run after Auth.
func RequireAdmin(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := identity.GetUserByID(c.Request.Context(), c.GetString(ctxUserIDKey))
		if err != nil {
			writeError(c, common.ErrorUnauthorized)
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
				Error:     "admin access required",
				RequestID: c.GetString(ctxRequestIDKey),
			})
			return
		}
		c.Next()
	}
}

// incrExpireScript atomically increments the window counter and arms its
// expiry on first hit.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimit is a redis-backed fixed-window limiter keyed by client IP and
// route. It fails open when redis is unreachable so a cache outage cannot
// take authentication down with it.
func RateLimit(rdb *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		key := "rl:" + c.FullPath() + ":" + ip

		count, err := incrExpireScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64()
		if err != nil {
			c.Next()
			return
		}

		remaining := max - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error:     "rate limit exceeded",
				RequestID: c.GetString(ctxRequestIDKey),
			})
			return
		}
		c.Next()
	}
}

// requestContext is a helper for handlers that need both the request
// context and the authenticated user ID.
func requestContext(c *gin.Context) (context.Context, string) {
	return c.Request.Context(), c.GetString(ctxUserIDKey)
}
