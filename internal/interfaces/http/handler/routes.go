package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/router"
)

// FulfillmentRoutes creates the route group for document and archive endpoints
func FulfillmentRoutes(handler *FulfillmentHandler, middleware ...gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("fulfillment", "/fulfillment")
	group.Use(middleware...)

	orders := group.Group("orders", "/orders/:id")
	orders.GET("/document", handler.GetOrderDocument)
	orders.GET("/label", handler.GetShippingLabel)
	orders.GET("/archive", handler.GetOrderArchive)
	orders.GET("/layout", handler.GetOrderLayout)

	group.POST("/exports", handler.StreamExport)
	group.POST("/exports/stored", handler.CreateStoredExport)

	return group
}

// SystemRoutes creates the route group for system endpoints
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")
	group.GET("/info", handler.GetSystemInfo)
	group.GET("/ping", handler.Ping)
	return group
}
