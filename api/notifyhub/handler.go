package notifyhub

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // access middleware already restricts the networks
	},
}

// Snapshotter returns the current window state of a job.
type Snapshotter func(jobID string) (types.ExecSnapshot, bool)

// HandleJobWS upgrades the request to WebSocket and streams the events of the job in the :id path parameter.
// The client is registered before the snapshot is taken, so live events already
// contained in the replay are skipped by sequence number.
func HandleJobWS(hub *Hub, snapshot Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		snap, ok := snapshot(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, tool.FastReturnError("Job not found"))
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer func() {
			if err := conn.Close(); err != nil {
				tool.DefaultLogger.Debugf("Failed to close WebSocket connection: %v", err)
			}
		}()

		sub := hub.register(conn, jobID)
		defer hub.Unregister(conn)
		if snap, ok = snapshot(jobID); !ok {
			return
		}
		for _, ev := range replay(snap) {
			payload, err := sonic.Marshal(&ev)
			if err != nil {
				return
			}
			if err := sub.write(payload); err != nil {
				tool.DefaultLogger.Debugf("[Hub] Failed to replay job %s: %v", jobID, err)
				return
			}
		}
		go sub.writeLoop(snap.Seq)

		// Read loop to detect client close and keep connection alive
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// replay rebuilds the events a late subscriber missed: output, the outcome of a
// finished job, then the close button, which makes the page reload the form.
func replay(snap types.ExecSnapshot) []types.ExecEvent {
	var events []types.ExecEvent
	if snap.Output != "" {
		events = append(events, types.ExecEvent{Type: types.ExecEventOutput, JobID: snap.JobID, Text: snap.Output})
	}
	if snap.Running {
		return events
	}
	ev := types.ExecEvent{Type: types.ExecEventFinish, JobID: snap.JobID}
	if snap.Error != "" {
		ev = types.ExecEvent{Type: types.ExecEventException, JobID: snap.JobID, Error: snap.Error}
	}
	events = append(events, ev)
	if disabled, ok := snap.Buttons[types.ButtonClose]; ok {
		events = append(events, types.ExecEvent{Type: types.ExecEventButton, JobID: snap.JobID, Button: types.ButtonClose, Disabled: disabled})
	}
	return events
}
