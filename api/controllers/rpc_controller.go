package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/rpc"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

type RPCController struct {
	service *rpc.Service
}

func NewRPCController(service *rpc.Service) *RPCController {
	return &RPCController{service: service}
}

// HandleRPC dispatches {service, method, params} to the backend.
// POST /rpc
func (ctrl *RPCController) HandleRPC(c *gin.Context) {
	var req types.RPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnRPC(nil, err))
		return
	}

	resp, err := ctrl.service.Call(c.Request.Context(), req.Service, req.Method, req.Params)
	if err != nil {
		c.JSON(statusFor(err), tool.FastReturnRPC(nil, err))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnRPC(resp, nil))
}
