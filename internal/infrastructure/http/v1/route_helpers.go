// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the interface for document handlers.
// All document handlers must implement these methods.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SaveItem(c *gin.Context)
	DeleteItem(c *gin.Context)
	Transition(c *gin.Context)
	Events(c *gin.Context)
	History(c *gin.Context)
}

// RegisterDocumentRoutes registers the standard editing and lifecycle routes
// of one document type.
//
// Usage:
//
//	handler := handlers.NewBaseDocumentHandler[*order.Order, dto.OrderRequest](base, cfg)
//	RegisterDocumentRoutes(api.Group("/orders"), handler)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/items", handler.SaveItem)
	group.PUT("/:id/items/:itemId", handler.SaveItem)
	group.DELETE("/:id/items/:itemId", handler.DeleteItem)
	group.POST("/:id/transitions/:event", handler.Transition)
	group.GET("/:id/events", handler.Events)
	group.GET("/:id/history", handler.History)
}
