package models

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/tool"
)

// FormSessionTTL is how long an idle settings page keeps its form state.
var FormSessionTTL = 30 * time.Minute

var formSessions = ttlworker.NewCache[string, *FormSession](FormSessionTTL)

// FormSession binds a settings form to the tabs and messages of one browser page.
type FormSession struct {
	ID       string
	Form     *form.SettingsForm
	Books    *PanelState
	Web      *PanelState
	Messages *MessageLog
}

// NewFormSession creates and caches a session. The form still has to be loaded.
func NewFormSession(settings form.SettingsService, executor form.Executor) *FormSession {
	s := &FormSession{
		ID:       tool.GenerateRandomUUID(),
		Books:    NewPanelState(form.BooksPanelTitle),
		Web:      NewPanelState(form.WebPanelTitle),
		Messages: &MessageLog{},
	}
	s.Form = form.New(settings, executor,
		form.WithSiblings(form.Siblings{Books: s.Books, Web: s.Web}),
		form.WithMessageBox(s.Messages),
	)
	formSessions.Set(s.ID, s)
	tool.DefaultLogger.Debugf("[Form] Created form session %s", s.ID)
	return s
}

// GetFormSession returns the cached session, or nil.
func GetFormSession(id string) *FormSession {
	if id == "" {
		return nil
	}
	return formSessions.Get(id)
}
