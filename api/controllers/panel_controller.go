package controllers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/calibre-panel/api/models"
	"github.com/moyoez/calibre-panel/api/views"
	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/rpc"
	"github.com/moyoez/calibre-panel/tool"
)

const sessionParam = "session"

// PanelController serves the HTML settings panel. Each page load gets its own
// form session; htmx requests post the whole form back with the session id.
type PanelController struct {
	service *rpc.Service
	manager *execute.Manager
	proxies []*net.IPNet // peers allowed to set X-Forwarded-Host
}

func NewPanelController(service *rpc.Service, manager *execute.Manager, proxies []*net.IPNet) *PanelController {
	return &PanelController{service: service, manager: manager, proxies: proxies}
}

// ShowPanel renders the page and loads the settings into a new form.
// GET /panel
func (ctrl *PanelController) ShowPanel(c *gin.Context) {
	s := models.NewFormSession(ctrl.service, ctrl.manager)
	if err := s.Form.Load(c.Request.Context()); err != nil {
		s.Messages.Error(err)
	}
	render(c, http.StatusOK, views.Page(ctrl.panelData(c, s)))
}

// HandleField applies edited values and re-renders the form with the rules applied.
// POST /panel/field
func (ctrl *PanelController) HandleField(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	ctrl.syncValues(c, s)
	render(c, http.StatusOK, views.Form(ctrl.panelData(c, s)))
}

// HandleSave validates and stores the form.
// POST /panel/save
func (ctrl *PanelController) HandleSave(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	ctrl.syncValues(c, s)

	rec, err := s.Form.Submit(c.Request.Context())
	var verrs form.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		d := ctrl.panelData(c, s)
		d.Errors = verrs
		render(c, http.StatusOK, views.Form(d))
		return
	case err != nil:
		s.Messages.Error(err)
		render(c, http.StatusOK, views.Form(ctrl.panelData(c, s)))
		return
	}

	// saved values drive the sibling tabs the same way a reload would
	s.Form.OnLoad(rec)
	d := ctrl.panelData(c, s)
	d.Notice = "Settings saved"
	siblings := d
	siblings.OOB = true
	render(c, http.StatusOK, views.Form(d), views.Tabs(siblings), views.Siblings(siblings))
}

// HandleImport starts importing the selected shared folder.
// POST /panel/import
func (ctrl *PanelController) HandleImport(c *gin.Context) {
	ctrl.runAction(c, (*form.SettingsForm).OnImport)
}

// HandleUpdate starts the Calibre update.
// POST /panel/update
func (ctrl *PanelController) HandleUpdate(c *gin.Context) {
	ctrl.runAction(c, (*form.SettingsForm).OnUpdate)
}

func (ctrl *PanelController) runAction(c *gin.Context, start func(*form.SettingsForm, context.Context) (*form.Action, error)) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	ctrl.syncValues(c, s)

	action, err := start(s.Form, c.Request.Context())
	if err != nil {
		render(c, http.StatusOK, views.Message(err.Error()))
		return
	}
	job, ok := ctrl.manager.Job(action.Task.ID())
	if !ok {
		render(c, http.StatusOK, views.Message("Job not found"))
		return
	}
	d := ctrl.panelData(c, s)
	d.OOB = true
	render(c, http.StatusOK, views.ExecWindow(job.Snapshot()), views.Form(d))
}

// HandleOpenWeb opens the web interface on the host the browser used.
// POST /panel/openweb
func (ctrl *PanelController) HandleOpenWeb(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	ctrl.syncValues(c, s)
	if !s.Form.ButtonEnabled(form.ButtonOpenWeb) {
		render(c, http.StatusOK, views.Message("The web interface is disabled"))
		return
	}
	b := &models.RequestBrowser{Host: tool.RequestHostname(c.Request, ctrl.proxies)}
	webURL := s.Form.OnOpenWeb(b)
	tool.DefaultLogger.Debugf("[Panel] Opening %s in %s", webURL, b.Target)
	render(c, http.StatusOK, views.OpenWeb(webURL))
}

func (ctrl *PanelController) session(c *gin.Context) (*models.FormSession, bool) {
	s := models.GetFormSession(c.PostForm(sessionParam))
	if s == nil {
		render(c, http.StatusOK, views.Message("The page has expired, please reload it"))
		return nil, false
	}
	return s, true
}

// syncValues copies the posted inputs into the form. Unchecked checkboxes are not posted.
func (ctrl *PanelController) syncValues(c *gin.Context, s *models.FormSession) {
	for _, f := range s.Form.Fields() {
		var raw string
		if f.Kind == form.KindCheckbox {
			raw = form.FormatBool(c.PostForm(f.Name) != "")
		} else {
			v, posted := c.GetPostForm(f.Name)
			if !posted {
				continue
			}
			raw = v
		}
		if raw == s.Form.Value(f.Name) {
			continue
		}
		if err := s.Form.SetValue(f.Name, raw); err != nil {
			tool.DefaultLogger.Debugf("[Panel] Ignoring %s: %v", f.Name, err)
		}
	}
}

func (ctrl *PanelController) panelData(c *gin.Context, s *models.FormSession) views.PanelData {
	f := s.Form
	values := f.Values()
	d := views.PanelData{
		SessionID:     s.ID,
		State:         f.State().String(),
		Fields:        f.Fields(),
		Values:        values,
		Buttons:       f.Buttons(),
		ImportEnabled: f.ButtonEnabled(form.ButtonImport),
		Folders:       ctrl.service.Folders().List(),
		Books:         tab(s.Books),
		Web:           tab(s.Web),
		Messages:      s.Messages.Drain(),
	}
	if f.ButtonEnabled(form.ButtonOpenWeb) {
		d.WebURL = form.WebURL(tool.RequestHostname(c.Request, ctrl.proxies), values[form.FieldPort])
	}
	return d
}

func tab(p *models.PanelState) views.Tab {
	return views.Tab{Title: p.Title, Enabled: p.Enabled(), Visible: p.TabVisible()}
}
