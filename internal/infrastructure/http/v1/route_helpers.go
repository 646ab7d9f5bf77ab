package v1

import (
	"github.com/gin-gonic/gin"
)

// ResourceRoutes is the route surface shared by all tenant-scoped resource
// handlers.
type ResourceRoutes interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterResourceRoutes registers the standard CRUD routes on a group.
// Role guards are applied on the group by the caller; tenant scoping
// happens in the service layer.
func RegisterResourceRoutes(rg *gin.RouterGroup, h ResourceRoutes) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
