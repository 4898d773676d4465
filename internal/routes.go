package internal

import (
	"net/http"
	"seedvault/internal/controllers"
	"seedvault/internal/providers"
	"seedvault/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/seed", http.HandlerFunc(apiController.LatestStatus))
	routers.Get("/safe-seed", http.HandlerFunc(apiController.SafeStatus))
	routers.Get("/resolve", http.HandlerFunc(apiController.ResolveSeed))
	routers.Post("/seed", http.HandlerFunc(apiController.StoreLatest))
	routers.Post("/safe-seed", http.HandlerFunc(apiController.StoreSafe))
	routers.Delete("/seed", http.HandlerFunc(apiController.ClearLatest))
	routers.Delete("/safe-seed", http.HandlerFunc(apiController.ClearSafe))
	return routers
}
