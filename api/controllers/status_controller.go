package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/api/notifyhub"
)

// HandleHealth reports that the server is up.
// GET /healthz
func HandleHealth(hub *notifyhub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"ws_watchers": hub.Count(),
		})
	}
}
