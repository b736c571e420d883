package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	dbt "billed/db/db"
	"billed/session"
)

func CorsConfig() cors.Config {
	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConf.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	corsConf.AllowCredentials = true
	corsConf.MaxAge = 1 * 3600 // 1 hour
	return corsConf
}

func limiterMiddleWare() gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Hour,
		Limit:  1000, // 1000 requests per hour
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)
	return mgin.NewMiddleware(instance)
}

// BillDataLoaderInjectionMiddleware attaches a fresh per-request loader so
// every bill lookup inside the request shares one batched store round trip.
func BillDataLoaderInjectionMiddleware(wrapper dbt.BillDBWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := dbt.NewBillDataLoader(wrapper)
		c.Request = c.Request.WithContext(dbt.ContextWithLoader(c.Request.Context(), loader))
		c.Next()
	}
}

// EmployeeGateMiddleware redirects requests without a logged-in session user
// to the login page. The decoded user is stashed in the gin context for the
// page handlers.
func EmployeeGateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := session.CurrentUser(cookieSession{c})
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(sessionUserContextKey, user)
		c.Next()
	}
}

func setupMiddlewares(r *gin.Engine) {
	r.Use(limiterMiddleWare())
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(CorsConfig()))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(secure.New(secure.Config{
		STSSeconds:           31536000, // 1 year
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
	}))
}
