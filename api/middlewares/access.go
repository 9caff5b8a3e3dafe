package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/tool"
)

// AllowNetworks only lets through clients whose address lies in one of cidrs.
// An empty list allows everyone.
func AllowNetworks(cidrs []string) (gin.HandlerFunc, error) {
	nets, err := tool.ParseNetworks(cidrs)
	if err != nil {
		return nil, fmt.Errorf("allowed networks: %w", err)
	}

	return func(c *gin.Context) {
		if len(nets) == 0 || tool.InNetworks(tool.ClientIP(c.Request), nets) {
			c.Next()
			return
		}
		tool.DefaultLogger.Warnf("[Access] Rejected request from %s", c.Request.RemoteAddr)
		c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
	}, nil
}

// OptionalBasicAuth requires the admin credentials when a user is configured.
func OptionalBasicAuth(user, password string) gin.HandlerFunc {
	if user == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return gin.BasicAuthForRealm(gin.Accounts{user: password}, "Calibre")
}
