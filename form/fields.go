package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moyoez/calibre-panel/types"
)

// Field names. They double as the keys of the submitted form values.
const (
	FieldEnable             = "enable"
	FieldDataSharedFolder   = "data.sharedfolderref"
	FieldPort               = "port"
	FieldUsername           = "username"
	FieldPassword           = "password"
	FieldCoverSize          = "coversize"
	FieldShowTab            = "showtab"
	FieldImportSharedFolder = "import.sharedfolderref"
)

// Section titles.
const (
	SectionGeneral = "General settings"
	SectionImport  = "Book Import"
)

// Button identifiers.
const (
	ButtonSave    = "save"
	ButtonUpdate  = "update"
	ButtonOpenWeb = "openweb"
	ButtonImport  = "import"
)

type FieldKind int

const (
	KindCheckbox FieldKind = iota
	KindSharedFolder
	KindNumber
	KindText
)

// Field describes one input of the settings form.
type Field struct {
	Name     string
	Label    string
	BoxLabel string
	Info     string
	Section  string
	Kind     FieldKind
	Default  string

	AllowBlank    bool
	AllowNone     bool
	AllowDecimals bool
	AllowNegative bool
	Min           int
	Max           int

	// Transient fields are UI state only and never part of the saved record.
	Transient bool
}

// Required reports whether the field currently rejects blank input.
func (f Field) Required() bool {
	return !f.AllowBlank
}

// Button describes an action button of the form.
type Button struct {
	ID       string
	Text     string
	Disabled bool
}

// Fields returns the field definitions in display order.
func Fields() []Field {
	return []Field{
		{
			Name:       FieldEnable,
			Label:      "Enable",
			Section:    SectionGeneral,
			Kind:       KindCheckbox,
			Default:    "false",
			AllowBlank: true,
		},
		{
			Name:       FieldDataSharedFolder,
			Label:      "Data directory",
			Info:       "The location where Calibre stores its data.",
			Section:    SectionGeneral,
			Kind:       KindSharedFolder,
			AllowBlank: true,
			AllowNone:  true,
		},
		{
			Name:    FieldPort,
			Label:   "Port",
			Info:    "Port to listen on.",
			Section: SectionGeneral,
			Kind:    KindNumber,
			Default: strconv.Itoa(types.DefaultPort),
			Min:     1,
			Max:     65535,
		},
		{
			Name:       FieldUsername,
			Label:      "Username",
			Info:       "Username for access - optional",
			Section:    SectionGeneral,
			Kind:       KindText,
			AllowBlank: true,
		},
		{
			Name:       FieldPassword,
			Label:      "Password",
			Info:       "Set a password to restrict access - optional",
			Section:    SectionGeneral,
			Kind:       KindText,
			AllowBlank: true,
		},
		{
			Name:       FieldCoverSize,
			Label:      "Cover Size",
			Info:       "The maximum size for displayed covers. Default is '" + types.DefaultCoverSize + "' - optional",
			Section:    SectionGeneral,
			Kind:       KindText,
			AllowBlank: true,
		},
		{
			Name:       FieldShowTab,
			Label:      "Show Tab",
			BoxLabel:   "Show tab containing web interface frame.",
			Section:    SectionGeneral,
			Kind:       KindCheckbox,
			Default:    "false",
			AllowBlank: true,
		},
		{
			Name:       FieldImportSharedFolder,
			Label:      "Shared folder",
			Info:       "The location of books to import.",
			Section:    SectionImport,
			Kind:       KindSharedFolder,
			AllowBlank: true,
			AllowNone:  true,
			Transient:  true,
		},
	}
}

// Sections returns the section titles in display order.
func Sections() []string {
	return []string{SectionGeneral, SectionImport}
}

// ParseBool reads a checkbox value. HTML forms submit "on" for checked boxes.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

// FormatBool is the inverse of ParseBool.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// ValidateField checks raw against the constraints of f.
func ValidateField(f Field, raw string) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Field: f.Name, Message: fmt.Sprintf(format, args...)}
	}
	value := strings.TrimSpace(raw)

	switch f.Kind {
	case KindCheckbox:
		if _, err := ParseBool(value); err != nil {
			return fail("Invalid value")
		}
	case KindSharedFolder:
		if value == "" && !f.AllowBlank {
			return fail("This field is required")
		}
		if value == types.SharedFolderNone && !f.AllowNone {
			return fail("This field is required")
		}
	case KindNumber:
		if value == "" {
			if f.AllowBlank {
				return nil
			}
			return fail("This field is required")
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fail("%s is not a valid number", value)
		}
		if !f.AllowDecimals && n != float64(int64(n)) {
			return fail("Decimal values are not allowed")
		}
		if !f.AllowDecimals && strings.ContainsAny(value, ".eE") {
			return fail("Decimal values are not allowed")
		}
		if !f.AllowNegative && n < 0 {
			return fail("Negative values are not allowed")
		}
		if f.Min != 0 || f.Max != 0 {
			if n < float64(f.Min) {
				return fail("The minimum value for this field is %d", f.Min)
			}
			if n > float64(f.Max) {
				return fail("The maximum value for this field is %d", f.Max)
			}
		}
	case KindText:
		if value == "" && !f.AllowBlank {
			return fail("This field is required")
		}
	}
	return nil
}

// Values formats rec as raw field values.
func Values(rec types.Settings) map[string]string {
	return map[string]string{
		FieldEnable:           FormatBool(rec.Enable),
		FieldDataSharedFolder: rec.SharedFolderRef,
		FieldPort:             strconv.Itoa(rec.Port),
		FieldUsername:         rec.Username,
		FieldPassword:         rec.Password,
		FieldCoverSize:        rec.CoverSize,
		FieldShowTab:          FormatBool(rec.ShowTab),
	}
}

// record converts already validated raw values into a typed record.
func record(values map[string]string) types.Settings {
	enable, _ := ParseBool(values[FieldEnable])
	showTab, _ := ParseBool(values[FieldShowTab])
	port, _ := strconv.Atoi(strings.TrimSpace(values[FieldPort]))
	return types.Settings{
		Enable:          enable,
		SharedFolderRef: strings.TrimSpace(values[FieldDataSharedFolder]),
		Port:            port,
		Username:        values[FieldUsername],
		Password:        values[FieldPassword],
		CoverSize:       strings.TrimSpace(values[FieldCoverSize]),
		ShowTab:         showTab,
	}
}
