package attachment

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the Errors key for problems not tied to one field.
const NonFieldErrors = "__all__"

// FormOptions constrains what the upload form accepts.
type FormOptions struct {
	MaxUploadSize int64
	// AllowedTypes lists accepted base MIME types. Empty accepts anything.
	AllowedTypes []string
}

// RevisionForm is the bound attachment upload form. After Validate, Errors
// maps field names to a message; it is empty when the form is valid.
type RevisionForm struct {
	Title       string                `form:"title" binding:"required,max=255"`
	Description string                `form:"description" binding:"max=500"`
	Comment     string                `form:"comment" binding:"max=255"`
	File        *multipart.FileHeader `form:"file" binding:"required"`

	Filename string `form:"-"`
	MimeType string `form:"-"`
	Size     int64  `form:"-"`

	Errors map[string]string `form:"-"`
}

// BindRevisionForm binds and validates the upload form from req. It always
// returns a form so it can be re-rendered with whatever was submitted.
func BindRevisionForm(req *http.Request, opts FormOptions) *RevisionForm {
	f := &RevisionForm{Errors: map[string]string{}}
	ct, _, _ := strings.Cut(req.Header.Get("Content-Type"), ";")
	b := binding.Default(req.Method, strings.TrimSpace(ct))
	if err := b.Bind(req, f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				f.Errors[strings.ToLower(fe.Field())] = fieldMessage(fe)
			}
		} else {
			f.Errors[NonFieldErrors] = "The submitted data could not be read."
		}
	}
	// whitespace-only titles count as missing
	if _, ok := f.Errors["title"]; !ok && strings.TrimSpace(f.Title) == "" {
		f.Errors["title"] = "This field is required."
	}
	if f.File != nil && f.Errors["file"] == "" {
		if err := f.checkFile(opts); err != nil {
			f.Errors["file"] = err.Error()
		}
	}
	return f
}

// Valid reports whether binding produced no errors.
func (f *RevisionForm) Valid() bool { return len(f.Errors) == 0 }

func (f *RevisionForm) checkFile(opts FormOptions) error {
	f.Filename = path.Base(strings.ReplaceAll(f.File.Filename, "\\", "/"))
	f.Size = f.File.Size
	if f.Size == 0 {
		return errors.New("The submitted file is empty.")
	}
	if opts.MaxUploadSize > 0 && f.Size > opts.MaxUploadSize {
		return fmt.Errorf("Please keep filesize under %d bytes. Current filesize is %d bytes.", opts.MaxUploadSize, f.Size)
	}
	fh, err := f.File.Open()
	if err != nil {
		return errors.New("The submitted file could not be read.")
	}
	defer fh.Close()
	mt, err := mimetype.DetectReader(fh)
	if err != nil {
		return errors.New("The submitted file could not be read.")
	}
	f.MimeType = baseType(mt.String())
	if len(opts.AllowedTypes) > 0 && !contains(opts.AllowedTypes, f.MimeType) {
		return fmt.Errorf("Files of this type are not permitted (%s).", f.MimeType)
	}
	return nil
}

// Open returns a fresh reader over the submitted file.
func (f *RevisionForm) Open() (io.ReadCloser, error) {
	if f.File == nil {
		return nil, errors.New("no file submitted")
	}
	return f.File.Open()
}

// Revision builds the unsaved revision described by the form. The caller
// fills in the attachment, storage key and creator before persisting it.
func (f *RevisionForm) Revision() *Revision {
	return &Revision{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Comment:     strings.TrimSpace(f.Comment),
		Filename:    f.Filename,
		MimeType:    f.MimeType,
		Size:        f.Size,
		Created:     time.Now().UTC(),
	}
}

// ExtensionHint describes the file types the form accepts, for display.
func (o FormOptions) ExtensionHint() string {
	hints := make([]string, 0, len(o.AllowedTypes))
	for _, t := range o.AllowedTypes {
		if ext := GuessExtension(t); ext != "" {
			hints = append(hints, ext)
		}
	}
	return strings.Join(hints, ", ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	}
	return "Enter a valid value."
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
