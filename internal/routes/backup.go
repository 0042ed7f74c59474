package routes

import (
	"github.com/labstack/echo/v4"

	"return-unpack-system/internal/controllers"
)

func runBackupRouter(api *echo.Group, backupCtrl *controllers.BackupController) {
	{
		api.POST("/backup", backupCtrl.CreateBackup)
		api.POST("/restore", backupCtrl.Restore)
		api.POST("/cleanup", backupCtrl.Cleanup)
		api.DELETE("/database", backupCtrl.ClearDatabase)
	}
}
