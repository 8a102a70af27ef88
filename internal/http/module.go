// Package http wires the gin engine, shared middleware and module routes.
package http

import (
	"github.com/gin-gonic/gin"
)

// RouterContext carries the route groups a module can attach to.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the public, unauthenticated API group.
	V1 *gin.RouterGroup
	// Protected requires a valid access token.
	Protected *gin.RouterGroup
	// Admin requires the admin role on top of authentication.
	Admin *gin.RouterGroup
	// Webhook requires a webhook API key instead of a user token.
	Webhook *gin.RouterGroup
}

// Module is implemented by every bounded context that exposes routes.
type Module interface {
	Name() string
	RegisterRoutes(rc RouterContext)
}
