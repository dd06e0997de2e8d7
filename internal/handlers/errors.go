package handlers

import (
	"log"

	"github.com/1cvibe/connectgate/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError writes the JSON error body for err and aborts the request
func respondError(c *gin.Context, err error) {
	e := services.AsError(err)

	switch e.Kind {
	case services.KindInternal, services.KindStorageUnavailable, services.KindUpstreamTimeout:
		log.Printf("[OAuth] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	description := e.Message
	if description == "" {
		description = e.Kind.Code()
	}
	c.AbortWithStatusJSON(e.Kind.HTTPStatus(), gin.H{
		"error":             e.Kind.Code(),
		"error_description": description,
	})
}
