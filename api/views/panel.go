package views

import (
	"net/url"
	"strconv"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/types"
)

// Tab is a sibling tab of the settings panel.
type Tab struct {
	Title   string
	Enabled bool
	Visible bool
}

// PanelData is everything needed to render the settings panel.
type PanelData struct {
	SessionID     string
	State         string
	Fields        []form.Field
	Values        map[string]string
	Buttons       []form.Button
	ImportEnabled bool
	Errors        form.ValidationErrors
	Folders       []types.SharedFolder
	Books         Tab
	Web           Tab
	WebURL        string
	Messages      []string
	Notice        string
	OOB           bool // render fragments as out-of-band swaps
}

const (
	FormID       = "calibre-settings"
	ExecWindowID = "exec-window"
	OpenWebID    = "openweb-result"
)

// Page renders the whole tabbed page.
func Page(d PanelData) g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				g.El("title", g.Text("Calibre")),
				h.Script(h.Src("https://unpkg.com/htmx.org@2.0.4")),
				g.El("style", g.Raw(pageCSS)),
			),
			h.Body(
				Tabs(d),
				h.Section(h.ID("settings"), h.Class("tab-panel"), Form(d)),
				Siblings(d),
				h.Div(h.ID(ExecWindowID)),
				h.Div(h.ID(OpenWebID)),
			),
		),
	)
}

// Tabs renders the tab bar. With d.OOB set it replaces the bar already on the page.
func Tabs(d PanelData) g.Node {
	return h.Nav(
		h.ID("tabs"),
		h.Class("tabs"),
		oob(d.OOB),
		tabLink("settings", "Settings", true, true),
		tabLink("books", d.Books.Title, d.Books.Enabled, d.Books.Visible),
		tabLink("web", d.Web.Title, d.Web.Enabled, d.Web.Visible),
	)
}

// Siblings renders the Books and Web Interface panels.
func Siblings(d PanelData) g.Node {
	return h.Div(
		h.ID("siblings"),
		oob(d.OOB),
		h.Section(
			h.ID("books"),
			h.Class("tab-panel"+disabledClass(d.Books.Enabled)),
			h.P(g.Text("Books are managed through the Calibre library in the data directory.")),
		),
		g.If(d.Web.Visible,
			h.Section(
				h.ID("web"),
				h.Class("tab-panel"+disabledClass(d.Web.Enabled)),
				g.If(d.Web.Enabled && d.WebURL != "", h.IFrame(h.Src(d.WebURL), h.Class("web-frame"))),
			),
		),
	)
}

func oob(on bool) g.Node {
	return g.If(on, g.Attr("hx-swap-oob", "true"))
}

func tabLink(id, title string, enabled, visible bool) g.Node {
	if !visible {
		return nil
	}
	return h.A(
		h.Href("#"+id),
		h.Class("tab"+disabledClass(enabled)),
		g.If(!enabled, g.Attr("aria-disabled", "true")),
		g.Text(title),
	)
}

func disabledClass(enabled bool) string {
	if enabled {
		return ""
	}
	return " disabled"
}

// Form renders the settings form. It is the swap target of every form request.
func Form(d PanelData) g.Node {
	sections := make([]g.Node, 0, len(form.Sections()))
	for _, title := range form.Sections() {
		sections = append(sections, fieldSet(d, title))
	}

	return h.Form(
		h.ID(FormID),
		h.Class("settings-form state-"+d.State),
		oob(d.OOB),
		hx.Post("/panel/save"),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		h.Input(h.Type("hidden"), h.Name("session"), h.Value(d.SessionID)),
		messages(d.Messages, d.Notice),
		toolbar(d.Buttons),
		g.Group(sections),
	)
}

func messages(msgs []string, notice string) g.Node {
	nodes := make([]g.Node, 0, len(msgs)+1)
	for _, m := range msgs {
		nodes = append(nodes, h.Div(h.Class("message error"), g.Text(m)))
	}
	if notice != "" {
		nodes = append(nodes, h.Div(h.Class("message notice"), g.Text(notice)))
	}
	return g.Group(nodes)
}

func toolbar(buttons []form.Button) g.Node {
	nodes := make([]g.Node, 0, len(buttons))
	for _, b := range buttons {
		attrs := []g.Node{
			h.ID(FormID + "-" + b.ID),
			h.Class("btn btn-" + b.ID),
			g.If(b.Disabled, h.Disabled()),
		}
		switch b.ID {
		case form.ButtonSave:
			attrs = append(attrs, h.Type("submit"))
		case form.ButtonUpdate:
			attrs = append(attrs, h.Type("button"),
				hx.Post("/panel/update"), hx.Target("#"+ExecWindowID), hx.Swap("innerHTML"))
		case form.ButtonOpenWeb:
			attrs = append(attrs, h.Type("button"),
				hx.Post("/panel/openweb"), hx.Target("#"+OpenWebID), hx.Swap("innerHTML"))
		}
		attrs = append(attrs, g.Text(b.Text))
		nodes = append(nodes, h.Button(attrs...))
	}
	return h.Div(h.Class("toolbar"), g.Group(nodes))
}

func fieldSet(d PanelData, title string) g.Node {
	var rows []g.Node
	for _, f := range d.Fields {
		if f.Section != title {
			continue
		}
		rows = append(rows, fieldRow(d, f))
	}
	if title == form.SectionImport {
		rows = append(rows, h.Button(
			h.Type("button"),
			h.ID(FormID+"-"+form.ButtonImport),
			h.Class("btn btn-import"),
			g.If(!d.ImportEnabled, h.Disabled()),
			hx.Post("/panel/import"),
			hx.Target("#"+ExecWindowID),
			hx.Swap("innerHTML"),
			g.Text("Import"),
		))
	}
	return h.FieldSet(
		h.Legend(g.Text(title)),
		g.Group(rows),
	)
}

func fieldRow(d PanelData, f form.Field) g.Node {
	id := FormID + "-" + f.Name
	value := d.Values[f.Name]
	var fieldErr g.Node
	if err := d.Errors.Field(f.Name); err != nil {
		fieldErr = h.Span(h.Class("field-error"), g.Text(err.Message))
	}
	var info g.Node
	if f.Info != "" {
		info = g.El("small", h.Class("field-info"), g.Text(f.Info))
	}

	return h.Div(
		h.Class("field"+requiredClass(f)),
		h.Label(h.For(id), g.Text(f.Label)),
		fieldInput(d, f, id, value),
		fieldErr,
		info,
	)
}

func requiredClass(f form.Field) string {
	if f.Kind == form.KindCheckbox || !f.Required() {
		return ""
	}
	return " required"
}

// every input re-posts the form so correlation rules are evaluated server side
func changeTrigger() g.Node {
	return g.Group([]g.Node{
		hx.Post("/panel/field"),
		hx.Trigger("change"),
		hx.Target("#" + FormID),
		hx.Swap("outerHTML"),
	})
}

func fieldInput(d PanelData, f form.Field, id, value string) g.Node {
	switch f.Kind {
	case form.KindCheckbox:
		checked, _ := form.ParseBool(value)
		return h.Span(
			h.Input(h.Type("checkbox"), h.ID(id), h.Name(f.Name), h.Value("true"),
				g.If(checked, h.Checked()), changeTrigger()),
			g.If(f.BoxLabel != "", h.Label(h.For(id), h.Class("box-label"), g.Text(f.BoxLabel))),
		)
	case form.KindSharedFolder:
		unset := !types.HasSharedFolder(value)
		options := make([]g.Node, 0, len(d.Folders)+1)
		if f.AllowNone {
			options = append(options, h.Option(h.Value(types.SharedFolderNone), g.If(unset, h.Selected()), g.Text("None")))
		} else {
			options = append(options, h.Option(h.Value(""), g.If(unset, h.Selected()), h.Disabled(), g.Text("Select a shared folder ...")))
		}
		for _, sf := range d.Folders {
			options = append(options, h.Option(h.Value(sf.Ref), g.If(value == sf.Ref, h.Selected()),
				g.Textf("%s [%s]", sf.Name, sf.Path)))
		}
		return h.Select(h.ID(id), h.Name(f.Name), g.If(f.Required(), h.Required()), changeTrigger(), g.Group(options))
	case form.KindNumber:
		return h.Input(h.Type("number"), h.ID(id), h.Name(f.Name), h.Value(value),
			g.Attr("min", strconv.Itoa(f.Min)), g.Attr("max", strconv.Itoa(f.Max)), g.Attr("step", "1"),
			g.If(f.Required(), h.Required()), changeTrigger())
	default:
		inputType := "text"
		if f.Name == form.FieldPassword {
			inputType = "password"
		}
		return h.Input(h.Type(inputType), h.ID(id), h.Name(f.Name), h.Value(value),
			g.If(f.Required(), h.Required()), changeTrigger())
	}
}

// OpenWeb opens webURL in a new browsing context and shows it as a QR code for phones.
func OpenWeb(webURL string) g.Node {
	return h.Div(
		h.Class("openweb"),
		h.A(h.Href(webURL), h.Target(form.OpenWebTarget), g.Text(webURL)),
		h.Img(h.Src("/panel/openweb/qr?size=160&data="+url.QueryEscape(webURL)), h.Alt(webURL)),
		h.Script(g.Rawf("window.open(%s, %s);", strconv.Quote(webURL), strconv.Quote(form.OpenWebTarget))),
	)
}

// Message renders a standalone error message fragment.
func Message(msg string) g.Node {
	return h.Div(h.Class("message error"), g.Text(msg))
}

const pageCSS = `
body { font-family: sans-serif; margin: 0; }
.tabs { display: flex; gap: 1em; padding: .5em 1em; border-bottom: 1px solid #ccc; }
.tab.disabled { color: #999; pointer-events: none; }
.tab-panel { padding: 1em; }
.tab-panel.disabled { opacity: .5; pointer-events: none; }
fieldset { margin-bottom: 1em; }
.field { display: grid; grid-template-columns: 12em 1fr; gap: .25em 1em; margin: .5em 0; }
.field.required > label::after { content: " *"; color: #c00; }
.field-info { grid-column: 2; color: #666; }
.field-error { grid-column: 2; color: #c00; }
.message.error { background: #fdd; padding: .5em; }
.message.notice { background: #dfd; padding: .5em; }
.toolbar { display: flex; gap: .5em; margin-bottom: 1em; }
.web-frame { width: 100%; height: 80vh; border: 0; }
.exec-window pre { background: #111; color: #eee; padding: .5em; max-height: 60vh; overflow: auto; }
`
