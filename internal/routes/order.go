package routes

import (
	"github.com/labstack/echo/v4"

	"return-unpack-system/internal/controllers"
)

func runOrderRouter(api *echo.Group, orderCtrl *controllers.OrderController) {
	{
		api.GET("/orders", orderCtrl.ListOrders)
		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders/search", orderCtrl.SearchOrders)
		api.GET("/orders/:orderNumber", orderCtrl.GetOrder)
		api.PUT("/orders/:orderNumber", orderCtrl.UpdateOrder)
		api.DELETE("/orders/:orderNumber", orderCtrl.DeleteOrder)
		api.POST("/orders/:orderNumber/video", orderCtrl.UploadVideo)
	}
}
