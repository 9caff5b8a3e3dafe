package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	g "maragu.dev/gomponents"

	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/rpc"
	"github.com/moyoez/calibre-panel/tool"
)

// statusFor maps backend failures to HTTP status codes.
func statusFor(err error) int {
	var verrs form.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, rpc.ErrNoSharedFolder),
		errors.Is(err, rpc.ErrUnknownSharedFolder),
		errors.Is(err, form.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, rpc.ErrUnknownService),
		errors.Is(err, execute.ErrUnknownMethod),
		errors.Is(err, execute.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, form.ErrActionRunning),
		errors.Is(err, form.ErrNotReady),
		errors.Is(err, execute.ErrJobFinished):
		return http.StatusConflict
	case errors.Is(err, execute.ErrNotStoppable):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// errorBody adds the failing fields to validation errors.
func errorBody(err error) gin.H {
	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		return tool.FastReturnErrorWithData(err.Error(), map[string]any{"fields": verrs})
	}
	return tool.FastReturnError(err.Error())
}

// render writes HTML fragments in order. Panel fragments always use 200 since
// htmx does not swap error responses.
func render(c *gin.Context, status int, nodes ...g.Node) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	for _, n := range nodes {
		if err := n.Render(c.Writer); err != nil {
			tool.DefaultLogger.Errorf("[Panel] Failed to render: %v", err)
			return
		}
	}
}
