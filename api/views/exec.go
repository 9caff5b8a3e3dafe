package views

import (
	"slices"
	"strconv"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/moyoez/calibre-panel/types"
)

// ExecWindow renders an execute window following the job over its websocket.
// The output is left empty here since the websocket replays it on connect.
func ExecWindow(snap types.ExecSnapshot) g.Node {
	outputID := "exec-output-" + snap.JobID
	closeID := "exec-close-" + snap.JobID

	var stop g.Node
	if !slices.Contains(snap.Hidden, types.ButtonStop) {
		stop = h.Button(
			h.Type("button"),
			h.Class("btn btn-stop"),
			g.If(!snap.Running, h.Disabled()),
			hx.Post("/api/exec/"+snap.JobID+"/stop"),
			hx.Swap("none"),
			g.Text("Stop"),
		)
	}

	return h.Div(
		h.Class("exec-window"),
		g.Attr("data-job", snap.JobID),
		h.H2(g.Text(snap.Title)),
		h.Pre(h.ID(outputID)),
		g.If(snap.Error != "", h.Div(h.Class("message error"), g.Text(snap.Error))),
		h.Div(
			h.Class("toolbar"),
			stop,
			h.Button(
				h.Type("button"),
				h.ID(closeID),
				h.Class("btn btn-close"),
				g.If(snap.Buttons[types.ButtonClose], h.Disabled()),
				g.Attr("onclick", "this.closest('.exec-window').remove()"),
				g.Text("Close"),
			),
		),
		h.Script(g.Rawf(execScript, strconv.Quote(snap.JobID), strconv.Quote(outputID), strconv.Quote(closeID), strconv.Quote(FormID))),
	)
}

// execScript applies websocket events to the window: output, button state, finish and exception.
const execScript = `(function(job, outputId, closeId, formId) {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/api/exec/" + job + "/ws");
  var out = document.getElementById(outputId);
  ws.onmessage = function(msg) {
    var ev = JSON.parse(msg.data);
    if (ev.type === "output") { out.textContent += ev.text; out.scrollTop = out.scrollHeight; }
    if (ev.type === "button" && ev.button === "close") {
      document.getElementById(closeId).disabled = !!ev.disabled;
      if (!ev.disabled && window.htmx && document.getElementById(formId)) {
        htmx.ajax("POST", "/panel/field", {source: "#" + formId, target: "#" + formId, swap: "outerHTML"});
      }
      if (!ev.disabled) { ws.close(); }
    }
    if (ev.type === "exception") { out.textContent += "\n" + ev.error; }
  };
})(%s, %s, %s, %s);`
