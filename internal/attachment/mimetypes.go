package attachment

import (
	"mime"
	"strings"
)

// overrideExtensions holds extension hints for types the system table
// gets wrong or lacks.
var overrideExtensions = map[string]string{
	"image/jpeg":                ".jpeg, .jpg, .jpe",
	"image/vnd.adobe.photoshop": ".psd",
}

var imageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
}

// GuessExtension returns the file extension hint for a MIME type, or ""
// when none is known.
func GuessExtension(mimeType string) string {
	mt := baseType(mimeType)
	if ext, ok := overrideExtensions[mt]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mt)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

// IsImage reports whether the type is one of the inline-displayable images.
func IsImage(mimeType string) bool {
	return imageMimeTypes[baseType(mimeType)]
}

// baseType strips parameters and normalizes case: "Text/Plain; charset=utf-8" -> "text/plain".
func baseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
