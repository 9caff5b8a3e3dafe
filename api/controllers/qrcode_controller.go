package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/calibre-panel/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// GenerateQRCode returns a PNG QR code of the web interface address.
// GET /panel/openweb/qr?size=160&data=<url>
func GenerateQRCode(c *gin.Context) {
	data := c.Query("data")
	if !strings.HasPrefix(data, "http://") && !strings.HasPrefix(data, "https://") {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Parameter data must be an http(s) URL"))
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	size = min(size, maxQRSize)

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// parseSize accepts "200x200" or "200".
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
