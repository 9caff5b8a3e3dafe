package tool

import (
	"maps"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/types"
)

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccess() gin.H {
	return gin.H{
		"status": "ok",
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}

func FastReturnErrorWithData(msg string, data map[string]any) gin.H {
	resp := gin.H{
		"error": msg,
	}
	maps.Copy(resp, data)
	return resp
}

// FastReturnRPC builds the /rpc reply envelope. A non-nil err replaces the response.
func FastReturnRPC(response any, err error) types.RPCResponse {
	if err != nil {
		return types.RPCResponse{Error: err.Error()}
	}
	return types.RPCResponse{Response: response}
}
