package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/rpc"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

type SettingsController struct {
	service *rpc.Service
}

func NewSettingsController(service *rpc.Service) *SettingsController {
	return &SettingsController{service: service}
}

// GET /api/calibre/settings
func (ctrl *SettingsController) HandleGet(c *gin.Context) {
	rec, err := ctrl.service.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), errorBody(err))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(rec))
}

// HandlePut replaces the settings record.
// PUT /api/calibre/settings
func (ctrl *SettingsController) HandlePut(c *gin.Context) {
	var rec types.Settings
	if err := c.ShouldBindJSON(&rec); err != nil {
		var verrs form.ValidationErrors
		if errors.As(form.RecordErrors(err), &verrs) {
			c.JSON(http.StatusBadRequest, errorBody(verrs))
			return
		}
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	if err := ctrl.service.SetSettings(c.Request.Context(), rec); err != nil {
		c.JSON(statusFor(err), errorBody(err))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(rec))
}

// HandleImport opens an import window. The body is {"sharedfolderref": "..."}.
// POST /api/calibre/import
func (ctrl *SettingsController) HandleImport(c *gin.Context) {
	var params types.ImportParams
	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	started, err := ctrl.service.StartImport(c.Request.Context(), params.SharedFolderRef)
	if err != nil {
		c.JSON(statusFor(err), errorBody(err))
		return
	}
	c.JSON(http.StatusAccepted, tool.FastReturnSuccessWithData(started))
}

// POST /api/calibre/update
func (ctrl *SettingsController) HandleUpdate(c *gin.Context) {
	started, err := ctrl.service.StartUpdate(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), errorBody(err))
		return
	}
	c.JSON(http.StatusAccepted, tool.FastReturnSuccessWithData(started))
}
