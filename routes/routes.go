package routes

import (
	"nutribot/config"
	"nutribot/controllers"
	"nutribot/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Events        *controllers.EventController
	Stats         *controllers.StatsController
	Profile       *controllers.ProfileController
	Subscriptions *controllers.SubscriptionController
	Admin         *controllers.AdminController
	Realtime      *controllers.RealtimeController
}

func SetupRouter(c Controllers, st *config.Settings) *gin.Engine {
	r := gin.Default()

	// Everything the chat adapter calls, secret-protected like a bot
	// webhook.
	bot := r.Group("/bot")
	bot.Use(middlewares.WebhookAuth(st.WebhookSecret))
	{
		bot.POST("/events", c.Events.HandleEvent)
		bot.GET("/stats/day", c.Stats.Day)
		bot.GET("/stats/range", c.Stats.Range)
		bot.GET("/stats/days", c.Stats.Days)
		bot.GET("/profile", c.Profile.GetProfile)
		bot.GET("/subscription", c.Subscriptions.Status)
		bot.POST("/admin/token", c.Admin.IssueToken)
	}

	// Operator endpoints.
	admin := r.Group("/admin")
	admin.Use(middlewares.AdminAuth(st.JWTSecret))
	{
		admin.GET("/health", c.Admin.Health)
		admin.POST("/subscription/cancel", c.Subscriptions.Cancel)
	}

	r.GET("/ws/progress", c.Realtime.ProgressWS)

	return r
}
