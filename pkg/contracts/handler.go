// Package contracts holds the interfaces services plug into pkg/app.
package contracts

import "github.com/julienschmidt/httprouter"

// RouteRegistrar mounts a resource's endpoints on the shared router. Handlers
// register absolute /api/v1 paths; middleware is applied by the application.
type RouteRegistrar interface {
	RegisterRoutes(router *httprouter.Router)
}
