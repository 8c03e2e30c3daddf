package attachment

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func uploadRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/attachments/upload/en-US/Web", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var pngOnly = FormOptions{MaxUploadSize: 1 << 20, AllowedTypes: []string{"image/png"}}

func TestBindRevisionForm_Valid(t *testing.T) {
	req := uploadRequest(t, map[string]string{"title": "Logo", "description": "the logo", "comment": "first"}, "dir/logo.png", pngBytes)
	f := BindRevisionForm(req, pngOnly)
	require.True(t, f.Valid(), "errors: %v", f.Errors)
	require.Equal(t, "logo.png", f.Filename)
	require.Equal(t, "image/png", f.MimeType)
	require.Equal(t, int64(len(pngBytes)), f.Size)

	rev := f.Revision()
	require.Equal(t, "Logo", rev.Title)
	require.Equal(t, "the logo", rev.Description)
	require.Equal(t, "first", rev.Comment)
	require.False(t, rev.Created.IsZero())

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, pngBytes, got)
}

func TestBindRevisionForm_MissingTitle(t *testing.T) {
	f := BindRevisionForm(uploadRequest(t, map[string]string{}, "logo.png", pngBytes), pngOnly)
	require.False(t, f.Valid())
	require.Equal(t, "This field is required.", f.Errors["title"])
}

func TestBindRevisionForm_BlankTitle(t *testing.T) {
	for _, title := range []string{"   ", "\t\n"} {
		f := BindRevisionForm(uploadRequest(t, map[string]string{"title": title}, "logo.png", pngBytes), pngOnly)
		require.False(t, f.Valid(), "%q", title)
		require.Equal(t, "This field is required.", f.Errors["title"])
	}

	f := BindRevisionForm(uploadRequest(t, map[string]string{"title": "  Logo  "}, "logo.png", pngBytes), pngOnly)
	require.True(t, f.Valid(), f.Errors)
	require.Equal(t, "Logo", f.Revision().Title)
}

func TestBindRevisionForm_MissingFile(t *testing.T) {
	f := BindRevisionForm(uploadRequest(t, map[string]string{"title": "Logo"}, "", nil), pngOnly)
	require.False(t, f.Valid())
	require.Contains(t, f.Errors, "file")
	require.Equal(t, "Logo", f.Title)
}

func TestBindRevisionForm_FileChecks(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content []byte
		opts    FormOptions
		wantErr string
	}{
		{"empty", "a.png", []byte{}, pngOnly, "empty"},
		{"too large", "a.png", pngBytes, FormOptions{MaxUploadSize: 8}, "filesize"},
		{"type not allowed", "a.txt", []byte("hello world"), pngOnly, "text/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := BindRevisionForm(uploadRequest(t, map[string]string{"title": "x"}, tc.file, tc.content), tc.opts)
			require.False(t, f.Valid())
			require.Contains(t, f.Errors["file"], tc.wantErr)
		})
	}
}

func TestBindRevisionForm_AnyTypeWhenUnrestricted(t *testing.T) {
	f := BindRevisionForm(uploadRequest(t, map[string]string{"title": "notes"}, "notes.txt", []byte("hello world")), FormOptions{MaxUploadSize: 1024})
	require.True(t, f.Valid(), "errors: %v", f.Errors)
	require.Equal(t, "text/plain", f.MimeType)
}

func TestBindRevisionForm_LongDescription(t *testing.T) {
	fields := map[string]string{"title": "Logo", "description": strings.Repeat("d", 501)}
	f := BindRevisionForm(uploadRequest(t, fields, "logo.png", pngBytes), pngOnly)
	require.Equal(t, "Ensure this value has at most 500 characters.", f.Errors["description"])
}

func TestBindRevisionForm_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=Logo"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f := BindRevisionForm(req, pngOnly)
	require.False(t, f.Valid())
	require.Contains(t, f.Errors, "file")
	require.Equal(t, "Logo", f.Title)
}

func TestFormOptions_ExtensionHint(t *testing.T) {
	o := FormOptions{AllowedTypes: []string{"image/jpeg", "image/vnd.adobe.photoshop"}}
	require.Equal(t, ".jpeg, .jpg, .jpe, .psd", o.ExtensionHint())
}
