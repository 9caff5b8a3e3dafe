package form

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/moyoez/calibre-panel/types"
)

// tagSharedFolder is reported when an enabled record points at the "none" folder.
const tagSharedFolder = "sharedfolder"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterStructValidation(settingsStructLevel, types.Settings{})
	}
}

func settingsStructLevel(sl validator.StructLevel) {
	rec := sl.Current().Interface().(types.Settings)
	if rec.Enable && rec.SharedFolderRef == types.SharedFolderNone {
		sl.ReportError(rec.SharedFolderRef, "SharedFolderRef", "SharedFolderRef", tagSharedFolder, "")
	}
}

// recordFields maps struct fields of types.Settings to form field names.
var recordFields = map[string]string{
	"Enable":          FieldEnable,
	"SharedFolderRef": FieldDataSharedFolder,
	"Port":            FieldPort,
	"Username":        FieldUsername,
	"Password":        FieldPassword,
	"CoverSize":       FieldCoverSize,
	"ShowTab":         FieldShowTab,
}

// ValidateRecord checks a typed record with the binding rules of types.Settings.
// It is used by backends that receive records without going through the form.
func ValidateRecord(rec types.Settings) error {
	return RecordErrors(binding.Validator.ValidateStruct(rec))
}

// RecordErrors converts validator failures on a settings record into
// ValidationErrors keyed by form field. Other errors are returned unchanged.
func RecordErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name, ok := recordFields[fe.StructField()]
		if !ok {
			name = fe.Field()
		}
		errs = append(errs, &ValidationError{Field: name, Message: recordMessage(fe)})
	}
	return errs
}

func recordMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", tagSharedFolder:
		return "This field is required"
	case "min", "max":
		return fmt.Sprintf("port %v out of range 1-65535", fe.Value())
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}
