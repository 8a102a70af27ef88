package http

// App aggregates the modules mounted on the router.
type App struct {
	Modules []Module
}
