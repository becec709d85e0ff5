package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/plantee/storefront/internal/webserver"
)

// Init registers every route. webserver.Init must run first.
func Init() {
	webserver.GET("/", welcome)
	registerPlantRoutes()
	registerOrderRoutes()
	registerReportRoutes()
	registerContactRoutes()
	registerAssistantRoutes()
}

func welcome(c echo.Context) error {
	return ok(c, echo.Map{"message": "Welcome to the Plantee API"})
}
