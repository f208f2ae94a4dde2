package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cinecircle/cinecircle/internal/server/config"
	"github.com/cinecircle/cinecircle/internal/server/services"
)

// RouterDeps bundles everything the router wires into handlers and
// middleware.
type RouterDeps struct {
	Config    *config.Config
	Redis     *redis.Client
	Identity  *services.IdentityService
	Social    *services.SocialService
	Profile   *services.ProfileService
	Tokens    *services.TokenService
	Watchlist *services.WatchlistService
}

// NewRouter assembles the gin engine: CORS, request IDs, rate limiting on
// the credential endpoints, and the authenticated API group.
func NewRouter(d RouterDeps) *gin.Engine {
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())

	corsCfg := cors.DefaultConfig()
	origins := strings.Split(d.Config.CORSAllowOrigins, ",")
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	users := NewUserHandler(d.Identity, d.Social, d.Profile, d.Tokens)
	lists := NewWatchlistHandler(d.Watchlist)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := RateLimit(d.Redis, d.Config.RateLimitMax, d.Config.RateLimitWindow)

	api := r.Group("/api")
	{
		api.POST("/register", limit, users.Register)
		api.POST("/login", limit, users.Login)
		api.POST("/token/refresh", users.RefreshToken)

		authed := api.Group("", Auth([]byte(d.Config.SecretKey)))
		{
			authed.GET("/users/:userId", users.GetUser)
			authed.DELETE("/users", users.DeleteAccount)
			authed.PATCH("/users/password", users.ChangePassword)

			admin := authed.Group("", RequireAdmin(d.Identity))
			{
				admin.GET("/users", users.ListUsers)
				admin.POST("/users/:userId/ban", users.BanUser)
			}

			authed.POST("/friends", users.AddFriend)
			authed.GET("/friends", users.FriendsList)

			authed.PUT("/profile", users.UpdateProfile)

			authed.POST("/watchlists", lists.Create)
			authed.PUT("/watchlists/:listId", lists.Update)
			authed.GET("/watchlists/:listId", lists.Get)
		}
	}

	return r
}
