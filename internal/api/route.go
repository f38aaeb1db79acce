package api

import (
	"Applyhub/internal/api/middleware"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/logger"
	"Applyhub/internal/pkg/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		appGroup := apiGroup.Group("/applications")
		appGroup.Use(middleware.AuthMiddleware())
		{
			appGroup.POST("", group.ApplicationHandler.CreateApplication)
			appGroup.GET("/self", group.ApplicationHandler.ListMyApplications)
			appGroup.GET("/:id", group.ApplicationHandler.GetApplication)
			appGroup.PATCH("/:id/status", group.ApplicationHandler.TransitionStatus)
			// 机会发布者也可查看，具体权限由 service 判断
			appGroup.GET("/opportunity/:opportunity_id", group.ApplicationHandler.ListByOpportunity)
		}

		interactionGroup := apiGroup.Group("/interactions")
		interactionGroup.Use(middleware.AuthMiddleware())
		{
			interactionGroup.POST("/toggle", group.InteractionHandler.Toggle)
			interactionGroup.GET("/state", group.InteractionHandler.GetState)
			interactionGroup.GET("/bookmarks", group.InteractionHandler.ListBookmarks)
		}

		analyticsGroup := apiGroup.Group("/analytics")
		analyticsGroup.Use(middleware.AuthMiddleware())
		{
			analyticsGroup.GET("", group.AnalyticsHandler.GetAnalytics)
		}

		sysbox := apiGroup.Group("/sysbox")
		sysbox.Use(middleware.AuthMiddleware())
		{
			sysbox.GET("/list", group.SysBoxHandler.GetNotificationList)
			sysbox.GET("/unread", group.SysBoxHandler.GetUnreadCount)
			sysbox.POST("/read", group.SysBoxHandler.MarkRead)
			sysbox.POST("/read/all", group.SysBoxHandler.MarkAllRead)
		}

		// 运维接口
		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdmin))
		{
			adminGroup.POST("/jobs/content-metric", group.JobHandler.TriggerContentMetric)
		}
	}

	return r
}
