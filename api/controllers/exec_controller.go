package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/api/notifyhub"
	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

type ExecController struct {
	manager *execute.Manager
	hub     *notifyhub.Hub
}

func NewExecController(manager *execute.Manager, hub *notifyhub.Hub) *ExecController {
	return &ExecController{manager: manager, hub: hub}
}

func (ctrl *ExecController) snapshot(id string) (types.ExecSnapshot, bool) {
	job, ok := ctrl.manager.Job(id)
	if !ok {
		return types.ExecSnapshot{}, false
	}
	return job.Snapshot(), true
}

// HandleGet returns the window state of a job.
// GET /api/exec/:id
func (ctrl *ExecController) HandleGet(c *gin.Context) {
	snap, ok := ctrl.snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Job not found"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(snap))
}

// HandleStop cancels a stoppable job.
// POST /api/exec/:id/stop
func (ctrl *ExecController) HandleStop(c *gin.Context) {
	if err := ctrl.manager.Stop(c.Param("id")); err != nil {
		c.JSON(statusFor(err), tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// HandleWS streams window events.
// GET /api/exec/:id/ws
func (ctrl *ExecController) HandleWS() gin.HandlerFunc {
	return notifyhub.HandleJobWS(ctrl.hub, ctrl.snapshot)
}
