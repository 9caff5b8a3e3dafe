package form

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

const (
	RPCService       = "Calibre"
	RPCGetMethod     = "getSettings"
	RPCSetMethod     = "setSettings"
	RPCImportMethod  = "doImport"
	RPCUpdateMethod  = "doUpdate"
	DoneText         = "Done..."
	ImportTitle      = "Importing..."
	UpdateTitle      = "Update Calibre..."
	OpenWebTarget    = "_blank"
	BooksPanelTitle  = "Books"
	WebPanelTitle    = "Web Interface"
	UpdateButtonText = "Update Calibre"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateSaving
	StateActionRunning
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateSaving:
		return "Saving"
	case StateActionRunning:
		return "ActionRunning"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a SettingsForm.
type Option func(*SettingsForm)

// WithSiblings injects the sibling panels toggled on load.
func WithSiblings(s Siblings) Option {
	return func(f *SettingsForm) {
		f.siblings = s
	}
}

// WithMessageBox sets where action exceptions are reported.
func WithMessageBox(mb MessageBox) Option {
	return func(f *SettingsForm) {
		f.messages = mb
	}
}

// WithRules replaces the default correlation rules.
func WithRules(rules []Rule) Option {
	return func(f *SettingsForm) {
		f.rules = rules
	}
}

// SettingsForm holds the editable state of the Calibre settings panel.
type SettingsForm struct {
	mu sync.Mutex

	settings SettingsService
	executor Executor
	siblings Siblings
	messages MessageBox
	rules    []Rule

	order   []string
	fields  map[string]*Field
	values  map[string]string
	buttons map[string]bool // button id -> enabled
	state   State
	action  *Action
}

// New creates a form in the Loading state.
func New(settings SettingsService, executor Executor, opts ...Option) *SettingsForm {
	f := &SettingsForm{
		settings: settings,
		executor: executor,
		rules:    CorrelationRules,
		fields:   make(map[string]*Field),
		values:   make(map[string]string),
		buttons: map[string]bool{
			ButtonSave:    true,
			ButtonUpdate:  true,
			ButtonImport:  true,
			ButtonOpenWeb: false,
		},
		state: StateLoading,
	}
	for _, def := range Fields() {
		field := def
		f.order = append(f.order, field.Name)
		f.fields[field.Name] = &field
		f.values[field.Name] = field.Default
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load fetches the record from the settings service and applies it.
func (f *SettingsForm) Load(ctx context.Context) error {
	rec, err := f.settings.GetSettings(ctx)
	if err != nil {
		tool.DefaultLogger.Errorf("[Form] Failed to load settings: %v", err)
		return NewRPCError(RPCService, RPCGetMethod, err)
	}
	f.OnLoad(rec)
	return nil
}

// OnLoad populates the fields from rec, evaluates every rule and toggles the sibling panels.
func (f *SettingsForm) OnLoad(rec types.Settings) {
	f.mu.Lock()
	maps.Copy(f.values, Values(rec))
	if f.state == StateLoading {
		f.state = StateReady
	}
	evaluateRules(f.rules, "", f.valueLocked, f)
	enable, _ := ParseBool(f.values[FieldEnable])
	showTab, _ := ParseBool(f.values[FieldShowTab])
	siblings := f.siblings
	f.mu.Unlock()

	tool.DefaultLogger.Debugf("[Form] Loaded settings: enable=%v showtab=%v port=%d", enable, showTab, rec.Port)

	if siblings.Books != nil {
		if enable {
			siblings.Books.Enable()
		} else {
			siblings.Books.Disable()
		}
	}
	if siblings.Web != nil {
		if enable {
			siblings.Web.Enable()
		} else {
			siblings.Web.Disable()
		}
		if showTab {
			siblings.Web.ShowTab()
		} else {
			siblings.Web.HideTab()
		}
	}
}

// SetValue records user input for field and re-evaluates the rules watching it.
func (f *SettingsForm) SetValue(field, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.fields[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if f.state == StateLoading || f.state == StateSaving {
		return ErrNotReady
	}
	f.values[field] = raw
	evaluateRules(f.rules, field, f.valueLocked, f)
	return nil
}

// Value returns the raw value of field.
func (f *SettingsForm) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Values returns a copy of all raw field values.
func (f *SettingsForm) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.values)
}

// Field returns the current definition of name, including rule-driven requirements.
func (f *SettingsForm) Field(name string) (Field, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, ok := f.fields[name]
	if !ok {
		return Field{}, false
	}
	return *field, true
}

// Fields returns the current field definitions in display order.
func (f *SettingsForm) Fields() []Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Field, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, *f.fields[name])
	}
	return out
}

// Required reports whether field currently rejects blank input.
func (f *SettingsForm) Required(field string) bool {
	def, ok := f.Field(field)
	return ok && def.Required()
}

// ButtonEnabled reports whether the button may be pressed now.
func (f *SettingsForm) ButtonEnabled(button string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buttonEnabledLocked(button)
}

func (f *SettingsForm) buttonEnabledLocked(button string) bool {
	switch button {
	case ButtonSave, ButtonUpdate, ButtonImport:
		if f.state != StateReady {
			return false
		}
	}
	return f.buttons[button]
}

// Buttons returns the toolbar buttons with their current state.
func (f *SettingsForm) Buttons() []Button {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []Button{
		{ID: ButtonSave, Text: "Save", Disabled: !f.buttonEnabledLocked(ButtonSave)},
		{ID: ButtonUpdate, Text: UpdateButtonText, Disabled: !f.buttonEnabledLocked(ButtonUpdate)},
		{ID: ButtonOpenWeb, Text: "Open Web Interface", Disabled: !f.buttonEnabledLocked(ButtonOpenWeb)},
	}
}

// State returns the current state.
func (f *SettingsForm) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CurrentAction returns the running action, or nil.
func (f *SettingsForm) CurrentAction() *Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.action
}

// Validate checks every persisted field and returns the record on success.
// The error is a ValidationErrors value.
func (f *SettingsForm) Validate() (types.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *SettingsForm) validateLocked() (types.Settings, error) {
	var errs ValidationErrors
	for _, name := range f.order {
		def := f.fields[name]
		if def.Transient {
			continue
		}
		if err := ValidateField(*def, f.values[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return types.Settings{}, errs
	}
	return record(f.values), nil
}

// Save hands rec to the settings service. Service errors are returned unchanged.
func (f *SettingsForm) Save(ctx context.Context, rec types.Settings) error {
	f.mu.Lock()
	if f.state != StateReady {
		f.mu.Unlock()
		return ErrNotReady
	}
	f.state = StateSaving
	f.mu.Unlock()

	err := f.settings.SetSettings(ctx, rec)

	f.mu.Lock()
	f.state = StateReady
	f.mu.Unlock()

	if err != nil {
		tool.DefaultLogger.Errorf("[Form] Failed to save settings: %v", err)
		return err
	}
	tool.DefaultLogger.Infof("[Form] Settings saved")
	return nil
}

// Submit validates the form and saves the resulting record.
func (f *SettingsForm) Submit(ctx context.Context) (types.Settings, error) {
	rec, err := f.Validate()
	if err != nil {
		return types.Settings{}, err
	}
	if err := f.Save(ctx, rec); err != nil {
		return types.Settings{}, err
	}
	return rec, nil
}

// OnOpenWeb opens the Calibre web interface on the browser's host and returns the URL.
func (f *SettingsForm) OnOpenWeb(b Browser) string {
	url := WebURL(b.Hostname(), f.Value(FieldPort))
	b.Open(url, OpenWebTarget)
	return url
}

// WebURL builds the web interface address from the browser hostname and the port field.
func WebURL(hostname, port string) string {
	return "http://" + hostname + ":" + port
}

func (f *SettingsForm) valueLocked(field string) string {
	return f.values[field]
}

func (f *SettingsForm) setRequired(field string, required bool) {
	def, ok := f.fields[field]
	if !ok {
		return
	}
	def.AllowBlank = !required
	if def.Kind == KindSharedFolder {
		def.AllowNone = !required
	}
}

func (f *SettingsForm) setButtonEnabled(button string, enabled bool) {
	f.buttons[button] = enabled
}
