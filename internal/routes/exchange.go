package routes

import (
	"github.com/labstack/echo/v4"

	"return-unpack-system/internal/controllers"
)

func runExchangeRouter(api *echo.Group, exchangeCtrl *controllers.ExchangeController) {
	{
		api.POST("/import", exchangeCtrl.Import)
		api.GET("/import/history", exchangeCtrl.History)
		api.GET("/export", exchangeCtrl.Export)
	}
}
