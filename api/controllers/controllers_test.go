package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/rpc"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{form.NewRPCError("Calibre", "setSettings", form.ValidationErrors{{Field: "port", Message: "x"}}), http.StatusBadRequest},
		{fmt.Errorf("import folder: %w", rpc.ErrUnknownSharedFolder), http.StatusBadRequest},
		{&form.RPCError{Message: "Service 'X' does not exist", Err: rpc.ErrUnknownService}, http.StatusNotFound},
		{execute.ErrJobNotFound, http.StatusNotFound},
		{form.ErrActionRunning, http.StatusConflict},
		{execute.ErrJobFinished, http.StatusConflict},
		{execute.ErrNotStoppable, http.StatusForbidden},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestErrorBodyListsFields(t *testing.T) {
	verrs := form.ValidationErrors{{Field: "port", Message: "The maximum value for this field is 65535"}}
	body := errorBody(form.NewRPCError("Calibre", "setSettings", verrs))

	assert.Equal(t, verrs, body["fields"])
	assert.Contains(t, body["error"], "port")
}

func TestParseSize(t *testing.T) {
	assert.Equal(t, 200, parseSize("200x200"))
	assert.Equal(t, 160, parseSize(" 160 "))
	assert.Equal(t, 0, parseSize("big"))
	assert.Equal(t, 0, parseSize(""))
}
