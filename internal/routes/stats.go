package routes

import (
	"github.com/labstack/echo/v4"

	"return-unpack-system/internal/controllers"
)

func runStatsRouter(api *echo.Group, statsCtrl *controllers.StatsController) {
	{
		api.GET("/stats/daily", statsCtrl.Daily)
		api.GET("/stats/filter", statsCtrl.FilterStats)
	}
}
