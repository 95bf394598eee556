package adminapi

// InitRouter attaches all admin API routes to the webserver. The
// webserver must be initialized first.
func InitRouter() {
	registerAuthRoutes()
	registerProductRoutes()
	registerDoctorRoutes()
	registerBrandRoutes()
}
