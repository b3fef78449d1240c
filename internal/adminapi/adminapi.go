// Package adminapi exposes the management REST API. All routes except
// login sit behind JWT auth under /api/v1.
package adminapi

// InitRouter registers every admin route group.
func InitRouter() {
	registerAuthRoutes()
	registerDealRoutes()
	registerProductRoutes()
	registerSettingsRoutes()
}
