package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notewire/notewire/background"
	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/version"
)

// RegisterRoutes binds the control surface onto the engine.
func RegisterRoutes(engine *gin.Engine, svc *background.Service, hub *Hub) {
	v1 := engine.Group("/v1")
	v1.POST("/message", handleMessage(svc))
	v1.GET("/tabs", func(c *gin.Context) { hub.Serve(c.Writer, c.Request) })
	v1.GET("/version", handleVersion)
	v1.GET("/healthz", handleHealth)
}

func handleMessage(svc *background.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req background.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondWithError(c, errors.InvalidInput("body", err.Error()))
			return
		}

		resp, err := svc.Dispatch(c.Request.Context(), req)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetVersionInfo())
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
