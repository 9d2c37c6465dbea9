package controller

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter declares the middlewares and every route of the API
func SetupRouter(router *gin.Engine, apiController APIController) {
	router.Use(
		gin.Recovery(),
		RequestLogger(),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET"},
			AllowHeaders:  []string{"Authorization, Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With, X-Request-ID"},
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}),
	)

	api := router.Group("")
	{
		api.GET("/languages", apiController.GetLanguageStatistics)
		api.GET("/languages/chart", apiController.GetLanguageChart)
		api.GET("/user", apiController.GetUserProfile)
	}
}
