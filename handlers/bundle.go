// File: quickbook/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Quick-book intent endpoints
	StartIntentHandler   gin.HandlerFunc
	AttachContactHandler gin.HandlerFunc
	ClickHandler         gin.HandlerFunc
	CompleteHandler      gin.HandlerFunc
	GetIntentHandler     gin.HandlerFunc
	ExportIntentsHandler gin.HandlerFunc

	// Chat endpoints
	DetectBookingIntentHandler gin.HandlerFunc

	// Operational endpoints
	HealthHandler  gin.HandlerFunc
	MetricsHandler gin.HandlerFunc
}
