package models

import (
	"sync"

	"github.com/moyoez/calibre-panel/form"
)

// PanelState is a sibling tab of the settings panel as shown in the browser.
type PanelState struct {
	Title string

	mu         sync.RWMutex
	enabled    bool
	tabVisible bool
}

var _ form.Panel = (*PanelState)(nil)

func NewPanelState(title string) *PanelState {
	return &PanelState{Title: title, enabled: true, tabVisible: true}
}

func (p *PanelState) Enable()  { p.set(&p.enabled, true) }
func (p *PanelState) Disable() { p.set(&p.enabled, false) }
func (p *PanelState) ShowTab() { p.set(&p.tabVisible, true) }
func (p *PanelState) HideTab() { p.set(&p.tabVisible, false) }

func (p *PanelState) set(field *bool, v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*field = v
}

func (p *PanelState) Enabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

func (p *PanelState) TabVisible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tabVisible
}

// MessageLog collects errors to show in the next rendered page.
type MessageLog struct {
	mu   sync.Mutex
	msgs []string
}

var _ form.MessageBox = (*MessageLog)(nil)

func (m *MessageLog) Error(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, err.Error())
}

// Drain returns and clears the pending messages.
func (m *MessageLog) Drain() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.msgs
	m.msgs = nil
	return msgs
}

// RequestBrowser is the browsing context of one HTTP request.
type RequestBrowser struct {
	Host   string
	URL    string
	Target string
}

var _ form.Browser = (*RequestBrowser)(nil)

func (b *RequestBrowser) Hostname() string { return b.Host }

func (b *RequestBrowser) Open(url, target string) {
	b.URL = url
	b.Target = target
}
